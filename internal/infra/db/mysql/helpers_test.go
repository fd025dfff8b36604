package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringOrDash(t *testing.T) {
	assert.Equal(t, "-", stringOrDash(""))
	assert.Equal(t, "-", stringOrDash("  "))
	assert.Equal(t, "acme", stringOrDash("acme"))
}

func TestJSONOrEmpty(t *testing.T) {
	assert.Equal(t, "{}", jsonOrEmpty(" "))
	assert.Equal(t, `{"quota_exceeded":true}`, jsonOrEmpty(`{"quota_exceeded":true}`))
	assert.JSONEq(t, `{"raw":"not json"}`, jsonOrEmpty("not json"))
}
