package models

import "time"

// ReconcileRun is an audit record of a counter reconciliation pass (PostgreSQL)
type ReconcileRun struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Scope         string    `json:"scope" gorm:"size:120;index"` // "all" or a blog slug
	BlogsScanned  int       `json:"blogs_scanned"`
	BlogsDrifted  int       `json:"blogs_drifted"`
	UsersScanned  int       `json:"users_scanned"`
	UsersDrifted  int       `json:"users_drifted"`
	Errors        int       `json:"errors"`
	ErrorSummary  string    `json:"error_summary" gorm:"type:text"`
	StartedAt     time.Time `json:"started_at" gorm:"index"`
	FinishedAt    time.Time `json:"finished_at"`
	DurationMilli int64     `json:"duration_ms"`
}

// BlogDrift reports a blog whose stored counters differed from the recount
type BlogDrift struct {
	BlogID string   `json:"blog_id"`
	Before Activity `json:"before"`
	After  Activity `json:"after"`
}

// Drifted reports whether any reconciled counter changed
func (d BlogDrift) Drifted() bool {
	return d.Before.TotalLikes != d.After.TotalLikes ||
		d.Before.TotalComments != d.After.TotalComments ||
		d.Before.TotalParentComments != d.After.TotalParentComments
}
