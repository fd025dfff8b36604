package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/tpa-risk/internal/domain/thirdparty"
)

func strPtr(s string) *string { return &s }

func TestGetRiskPrompt_ListsEveryApp(t *testing.T) {
	apps := []thirdparty.DedupedApp{
		{Name: "AppA", Handle: "h1", Scopes: strPtr("read:mail")},
		{Name: "AppB", Handle: "h2", Scopes: strPtr("admin:all")},
		{Name: "AppC", Handle: "h3"},
	}

	p := GetRiskPrompt("Acme", apps)

	assert.Contains(t, p, "Organization: Acme\n")
	assert.Contains(t, p, "\n1. AppA\n   Scopes: read:mail\n")
	assert.Contains(t, p, "\n2. AppB\n   Scopes: admin:all\n")
	assert.Contains(t, p, "\n3. AppC\n   Scopes: None specified\n")
}

func TestGetRiskPrompt_Placeholders(t *testing.T) {
	p := GetRiskPrompt("Acme", []thirdparty.DedupedApp{{Handle: "h1", Scopes: strPtr("")}})

	assert.Contains(t, p, "1. Unknown SaaS\n   Scopes: None specified\n")
}

func TestGetRiskPrompt_SectionOrder(t *testing.T) {
	apps := make([]thirdparty.DedupedApp, 0, 250)
	for i := 0; i < 250; i++ {
		apps = append(apps, thirdparty.DedupedApp{Name: "App", Scopes: strPtr("s")})
	}

	p := GetRiskPrompt("Big Org", apps)

	org := strings.Index(p, "Organization: Big Org")
	last := strings.Index(p, "250. App")
	top3 := strings.Index(p, "TOP 3 MOST RISKY")
	schema := strings.Index(p, `"top_risky_apps"`)
	only := strings.Index(p, "Only return the JSON object, no other text.")

	require.NotEqual(t, -1, org)
	require.NotEqual(t, -1, last, "listing must not be truncated")
	assert.Less(t, org, last)
	assert.Less(t, last, top3)
	assert.Less(t, top3, schema)
	assert.Less(t, schema, only)
}

func TestGetRiskPrompt_SchemaFields(t *testing.T) {
	p := GetRiskPrompt("Acme", nil)

	for _, field := range []string{"app_name", "risk_level", "explanation", "original_scopes", "risk_factors", "recommended_actions"} {
		assert.Contains(t, p, `"`+field+`"`)
	}
	assert.Contains(t, p, "less-established applications over widely trusted providers")
	assert.Contains(t, p, "more permissions than their core functionality would require")
	assert.Contains(t, p, "Unusual or unknown application names")
}

func TestGetRiskPrompt_Deterministic(t *testing.T) {
	apps := []thirdparty.DedupedApp{{Name: "AppA", Scopes: strPtr("x")}}
	assert.Equal(t, GetRiskPrompt("Acme", apps), GetRiskPrompt("Acme", apps))
}
