package types

// Entry is a single (category, amount) pair reconstructed from a balance report.
// Amount is kept exactly as printed, currency classification happens later.
type Entry struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	// Line is the 1-based line number in the raw report
	Line int `json:"line"`
}
