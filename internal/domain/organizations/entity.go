package organizations

// ID is the opaque organization identifier used by the source store.
type ID string

// Organization is the tenant whose connected applications get assessed.
type Organization struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}
