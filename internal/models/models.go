package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle stage of a tracked application.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// AllStatuses lists every recognized status value.
var AllStatuses = []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn}

// ParseStatus matches case-insensitively and coerces anything unrecognized to
// "applied". Imported spreadsheets carry all kinds of casing.
func ParseStatus(s string) Status {
	lower := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range AllStatuses {
		if lower == st {
			return st
		}
	}
	return StatusApplied
}

// JobRecord is the persisted unit. JSON names must stay byte-for-byte
// compatible with records the extension already has in storage.
type JobRecord struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Status      Status `json:"status"`
	AppliedDate string `json:"appliedDate"` // YYYY/MM/DD
	LastUpdate  string `json:"lastUpdate"`  // YYYY/MM/DD
	Notes       string `json:"notes"`
	URL         string `json:"url"`
	Site        string `json:"site"`
	Description string `json:"description"`
}

// DraftCapture is the extracted-and-editable candidate record inside a
// capture session. Never persisted except as the pending checkpoint.
type DraftCapture struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Site        string `json:"site"`
	ExtractedAt string `json:"extractedAt"` // RFC3339
}

// PendingCapture is the checkpoint slot payload: present only while a capture
// form is open, so a reload can resurrect exactly one pending form.
type PendingCapture struct {
	Show    bool         `json:"show"`
	JobData DraftCapture `json:"jobData"`
}

// NewRecordID builds an id that is monotonic-enough within a session:
// millisecond timestamp plus a uuid fragment so two appends in the same
// millisecond cannot collide. Ids are never reused after deletion.
func NewRecordID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
