package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/tpa-risk/internal/domain/thirdparty"
)

const (
	unknownAppName = "Unknown SaaS"
	noScopes       = "None specified"
)

const guidance = `Based on your knowledge of SaaS applications and their typical security risks, identify the TOP 3 MOST RISKY applications from this list. Consider the permissions granted and your understanding of what these applications can do.

IMPORTANT GUIDANCE:
- Focus on potentially shady, nsfw, or less-established applications over widely trusted providers like Microsoft, Google, or Adobe
- Pay special attention to applications with unusually broad permissions
- Be suspicious of applications requesting more permissions than their core functionality would require
- Consider the reputation and trustworthiness of the application provider
- Unusual or unknown application names should receive extra scrutiny

For each chosen application, provide:
1. A detailed explanation of why you consider it risky, focusing on:
   - What sensitive data it might access
   - What problematic actions it could take with its permissions
   - Any known security concerns with this type of application
2. The original permission scopes that led to this assessment
`

// OutputSchema is the JSON contract the response parser expects.
const OutputSchema = `Return a JSON object with this structure:
{
  "top_risky_apps": [
    {
      "app_name": "App Name",
      "risk_level": "High/Medium/Low",
      "explanation": "Detailed explanation of why this app is risky...",
      "original_scopes": "The exact scopes string from the input",
      "risk_factors": ["Factor 1", "Factor 2", ...],
      "recommended_actions": ["Action 1", "Action 2", ...]
    },
    ...
  ]
}
`

const jsonOnly = "Only return the JSON object, no other text."

// GetRiskPrompt builds the analysis request for one organization. Every app is
// listed, in order, so the model sees the complete candidate set.
func GetRiskPrompt(orgName string, apps []thirdparty.DedupedApp) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nOrganization: %s\n\n", orgName)
	b.WriteString("Below is a list of third-party SaaS applications connected to this organization, along with their scopes:\n\n")

	for i, app := range apps {
		name := app.Name
		if name == "" {
			name = unknownAppName
		}
		scopes := app.ScopesOrEmpty()
		if scopes == "" {
			scopes = noScopes
		}
		fmt.Fprintf(&b, "\n%d. %s\n   Scopes: %s\n", i+1, name, scopes)
	}

	b.WriteString("\n\n")
	b.WriteString(guidance)
	b.WriteString("\n")
	b.WriteString(OutputSchema)
	b.WriteString("\n")
	b.WriteString(jsonOnly)
	b.WriteString("\n")
	return b.String()
}
