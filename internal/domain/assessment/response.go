package assessment

import (
	"bytes"
	"encoding/json"

	"github.com/bryanwahyu/tpa-risk/internal/domain/thirdparty"
)

// ParseResponse decodes raw model text and backfills missing original_scopes
// from lookup. It never returns an error: unusable text becomes a ParseFailure.
//
// Each top_risky_apps entry is kept as the model sent it. Only an entry that
// cannot hold original_scopes at all (a null entry, or a top_risky_apps that
// is set but is not an array) fails the parse.
func ParseResponse(raw string, lookup thirdparty.ScopesLookup) Analysis {
	failed := Analysis{Failure: &ParseFailure{Error: ParseFailureMessage, RawResponse: raw}}

	var value json.RawMessage
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return failed
	}
	value = bytes.TrimSpace(value)
	if value[0] != '{' {
		return Analysis{Report: &Report{raw: value}}
	}

	obj, err := decodeObject(value)
	if err != nil {
		return failed
	}
	report := &Report{obj: obj}

	apps, ok := obj.get(topRiskyAppsKey)
	if !ok || falsy(apps) {
		return Analysis{Report: report}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(apps, &entries); err != nil {
		return failed
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if string(entry) == "null" {
			return failed
		}
		if entry[0] == '{' {
			app, err := decodeObject(entry)
			if err != nil {
				return failed
			}
			if backfill(app, lookup) {
				if entry, err = app.MarshalJSON(); err != nil {
					return failed
				}
			}
			report.TopRiskyApps = append(report.TopRiskyApps, assessmentView(app))
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(entry)
	}
	buf.WriteByte(']')

	obj.set(topRiskyAppsKey, buf.Bytes())
	report.hasApps = true
	return Analysis{Report: report}
}

// backfill sets original_scopes from lookup when the model left it out or
// empty. A value the model supplied is never overridden.
func backfill(app *object, lookup thirdparty.ScopesLookup) bool {
	if cur, ok := app.get("original_scopes"); ok && !falsy(cur) {
		return false
	}
	nameRaw, ok := app.get("app_name")
	if !ok {
		return false
	}
	var name string
	if json.Unmarshal(nameRaw, &name) != nil {
		return false
	}
	scopes, ok := lookup.Lookup(name)
	if !ok {
		return false
	}
	b, err := marshalNoEscape(scopes)
	if err != nil {
		return false
	}
	app.set("original_scopes", b)
	return true
}
