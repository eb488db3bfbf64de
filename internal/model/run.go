package model

import "time"

// DetectionRun is the persisted summary of one inference run.
type DetectionRun struct {
	CreatedAt    time.Time
	ID           string
	HomeKey      string
	WorkKey      string
	VacationKey  string
	ParamsJSON   string
	ReceiptCount int
	ClusterCount int
	Skipped      int
}

// Import describes one batch of receipts loaded from a file.
type Import struct {
	ImportedAt time.Time
	ID         string
	Source     string
	Rows       int
}
