package entity

// ProgramCategoryRule maps a known program ID to a behavioral category.
// An address earns the category pattern once its interaction count with the
// program reaches MinInteractions.
type ProgramCategoryRule struct {
	Name            string          `json:"name"`
	Category        PatternCategory `json:"category"`
	MinInteractions int             `json:"min_interactions"`
	RiskTier        PatternRiskTier `json:"risk_tier"`
}

// ProgramRegistry is static configuration mapping program IDs to category
// rules. It is supplied to the core, never fetched by it.
type ProgramRegistry map[string]ProgramCategoryRule

// Rule returns the rule for a program ID, if registered.
func (r ProgramRegistry) Rule(programID string) (ProgramCategoryRule, bool) {
	rule, ok := r[programID]
	return rule, ok
}

// LabelRegistry is static configuration mapping known addresses to
// human-readable labels (exchanges, protocols, bridges).
type LabelRegistry map[string]string

// Label returns the label for an address, or "".
func (r LabelRegistry) Label(address string) string {
	return r[address]
}
