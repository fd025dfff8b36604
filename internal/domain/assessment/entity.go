package assessment

import (
	"bytes"
	"encoding/json"
	"time"
)

// RiskLevel enum
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// Valid reports whether the level is one the prompt asks for.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskHigh, RiskMedium, RiskLow:
		return true
	}
	return false
}

// RiskAssessment is a typed view of one top_risky_apps entry, used for
// summaries and logs. The entry itself is written back as the model sent it.
type RiskAssessment struct {
	AppName            string    `json:"app_name"`
	RiskLevel          RiskLevel `json:"risk_level"`
	Explanation        string    `json:"explanation"`
	OriginalScopes     string    `json:"original_scopes"`
	RiskFactors        []string  `json:"risk_factors"`
	RecommendedActions []string  `json:"recommended_actions"`
}

// assessmentView reads the known fields of an entry. A field of the wrong
// type is left at its zero value.
func assessmentView(o *object) RiskAssessment {
	var a RiskAssessment
	for _, m := range o.members {
		var dst any
		switch m.key {
		case "app_name":
			dst = &a.AppName
		case "risk_level":
			dst = &a.RiskLevel
		case "explanation":
			dst = &a.Explanation
		case "original_scopes":
			dst = &a.OriginalScopes
		case "risk_factors":
			dst = &a.RiskFactors
		case "recommended_actions":
			dst = &a.RecommendedActions
		default:
			continue
		}
		_ = json.Unmarshal(m.value, dst)
	}
	return a
}

const topRiskyAppsKey = "top_risky_apps"

// Report is a model response that parsed as JSON. It marshals back to the
// model's own object (key order and unknown keys included), changed only by
// original_scopes backfill. A JSON value that is not an object is passed
// through untouched.
type Report struct {
	// TopRiskyApps is read-only; edits are not written back.
	TopRiskyApps []RiskAssessment

	hasApps bool
	obj     *object
	raw     json.RawMessage
}

// HasTopRiskyApps is false when the model omitted the key or sent a falsy value.
func (r *Report) HasTopRiskyApps() bool { return r.hasApps }

func (r *Report) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	if r.obj == nil {
		return []byte("{}"), nil
	}
	return r.obj.MarshalJSON()
}

// Summary counts assessments per risk level.
type Summary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Other  int `json:"other"`
}

func (r *Report) Summary() Summary {
	var s Summary
	for _, a := range r.TopRiskyApps {
		s.Total++
		switch a.RiskLevel {
		case RiskHigh:
			s.High++
		case RiskMedium:
			s.Medium++
		case RiskLow:
			s.Low++
		default:
			s.Other++
		}
	}
	return s
}

// ParseFailureMessage is the error recorded when a response is not usable JSON.
const ParseFailureMessage = "Failed to parse response"

// ParseFailure keeps the raw model text so the artifact records what went wrong.
type ParseFailure struct {
	Error       string `json:"error"`
	RawResponse string `json:"raw_response"`
}

// Analysis is either a parsed Report or a ParseFailure, never both.
type Analysis struct {
	Report  *Report
	Failure *ParseFailure
}

// Failed reports whether the model output could not be parsed.
func (a Analysis) Failed() bool { return a.Failure != nil }

func (a Analysis) MarshalJSON() ([]byte, error) {
	if a.Failure != nil {
		return marshalNoEscape(a.Failure)
	}
	if a.Report == nil {
		return []byte("null"), nil
	}
	return a.Report.MarshalJSON()
}

// AnalysisResult is the unit persisted per organization.
type AnalysisResult struct {
	Organization   string   `json:"organization"`
	OrganizationID string   `json:"organization_id"`
	Timestamp      string   `json:"timestamp"`
	Analysis       Analysis `json:"analysis"`
}

// ISOTimestamp formats t as UTC with millisecond precision, e.g. 2025-03-01T10:04:05.123Z.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// marshalNoEscape is json.Marshal without HTML escaping, so model text is
// written byte for byte.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalIndent renders the result the way it is written to disk.
func (r *AnalysisResult) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
