package thirdparty

// ScopesLookup maps an application name to its granted scopes.
// It is only used to repair model output.
type ScopesLookup map[string]string

// Lookup returns the scopes for name. ok is false when the name is unknown
// or the app was admitted without scopes.
func (l ScopesLookup) Lookup(name string) (string, bool) {
	s, ok := l[name]
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Deduplicate keeps the first record per handle, in input order, and drops
// records without a name. Input is newest first, so the most recent metadata wins.
func Deduplicate(records []ScopeRecord) ([]DedupedApp, ScopesLookup) {
	apps := make([]DedupedApp, 0, len(records))
	lookup := make(ScopesLookup, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, r := range records {
		if r.Name == "" {
			continue
		}
		if _, dup := seen[r.Handle]; dup {
			continue
		}
		seen[r.Handle] = struct{}{}

		app := DedupedApp{
			Name:           r.Name,
			Handle:         r.Handle,
			Scopes:         r.Scopes,
			Category1:      r.Category1,
			Category2:      r.Category2,
			IsAI:           r.IsAI,
			SensitiveLevel: r.SensitiveLevel,
			ObjectAtRisk:   r.ObjectAtRisk,
		}
		apps = append(apps, app)
		lookup[app.Name] = app.ScopesOrEmpty()
	}
	return apps, lookup
}
