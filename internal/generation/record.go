// Package generation orchestrates spreadsheet generation and the metadata
// records describing each completed generation.
package generation

// Record is the persisted metadata for one completed document generation.
// Records are immutable once written; only their byte size and derived
// filename survive the transient workbook they describe.
type Record struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Provider    string `json:"provider"`
	Filename    string `json:"filename"`
	SizeBytes   int64  `json:"size_bytes"`
	CreatedAt   string `json:"created_at"` // ISO-8601, UTC
}
