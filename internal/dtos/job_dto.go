package dtos

import "github.com/applytrack/applytrackd/internal/models"

// ExtractRequest carries a captured page to the selector-based extractor.
type ExtractRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url" binding:"required"`
}

// ExtractResponse reports whether the hostname matched the selector table and
// the draft built from the page when it did.
type ExtractResponse struct {
	Matched bool                 `json:"matched"`
	Site    string               `json:"site,omitempty"`
	Draft   *models.DraftCapture `json:"draft,omitempty"`
}

// DetectRequest asks whether a click was an apply action. Target is a CSS
// path to the clicked element within the captured page.
type DetectRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url" binding:"required"`
	Target  string `json:"target" binding:"required"`
}

// SaveMessage is the one-verb message boundary between the page side and the
// storage owner.
type SaveMessage struct {
	Action string           `json:"action" binding:"required"`
	Data   models.JobRecord `json:"data"`
}

// SaveResponse mirrors the extension's message reply shape.
type SaveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CreateJobRequest is the manual add form.
type CreateJobRequest struct {
	Company     string `json:"company" binding:"required"`
	Position    string `json:"position" binding:"required"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Status      string `json:"status"` // defaults to "applied" when empty
	Notes       string `json:"notes"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// UpdateFieldRequest is one inline table edit.
type UpdateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// UpdateStatusRequest is a status-select change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BulkDeleteRequest carries the checked row ids. The UI confirms with the
// user before sending.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}
