package dto

// RosterRow is one parsed row of an uploaded roster snapshot. Only the email
// is mandatory; names seed the display name of newly created students.
type RosterRow struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// RosterSyncResult reports a reconciliation run. Enabled is a cardinality,
// not a delta: every successfully processed email counts, whether it was
// newly created, re-enabled, or already enabled.
type RosterSyncResult struct {
	EnabledCount   int      `json:"enabled"`
	DisabledCount  int      `json:"disabled"`
	CreatedCount   int      `json:"created"`
	TotalProcessed int      `json:"totalProcessed"`
	Errors         []string `json:"errors,omitempty"`
}
