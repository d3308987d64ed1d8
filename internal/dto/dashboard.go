package dto

// DashboardStats aggregates the application ledger, optionally scoped to a
// single user. ActiveScholarships is always catalog-wide regardless of scope.
type DashboardStats struct {
	TotalApplications    int   `json:"total_applications"`
	PendingApplications  int   `json:"pending_applications"`
	ApprovedApplications int   `json:"approved_applications"`
	RejectedApplications int   `json:"rejected_applications"`
	ActiveScholarships   int   `json:"active_scholarships"`
	TotalAmount          int64 `json:"total_amount"`
}
