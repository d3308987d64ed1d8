package models

import "time"

// Scholarship represents a catalog offer stored in the scholarships table.
// Rows are never deleted; retiring an offer flips the active flag so that
// existing applications keep a resolvable reference.
type Scholarship struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Eligibility string    `db:"eligibility" json:"eligibility"`
	Amount      int64     `db:"amount" json:"amount"`
	Deadline    time.Time `db:"deadline" json:"deadline"`
	Category    string    `db:"category" json:"category"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
