package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/applytrack/applytrackd/internal/dtos"
	"github.com/applytrack/applytrackd/internal/models"
	"github.com/applytrack/applytrackd/internal/services"
)

// JobHandler serves the Record Store surfaces: the message boundary the
// content script submits through, and the CRUD/CSV/stats endpoints the popup
// and tracker page use.
type JobHandler struct {
	Records *services.RecordService
	CSV     *services.CSVService
	Stats   *services.StatsService
	Logger  *zap.Logger
}

func NewJobHandler(records *services.RecordService, csv *services.CSVService, stats *services.StatsService, logger *zap.Logger) *JobHandler {
	return &JobHandler{Records: records, CSV: csv, Stats: stats, Logger: logger}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SaveMessage is POST /messages: the one-verb boundary. The reply is always
// the {success, error} shape, never a transport-level error, so the page side
// can distinguish transport failures (retryable) from storage decisions.
func (h *JobHandler) SaveMessage(c *gin.Context) {
	var msg dtos.SaveMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, dtos.SaveResponse{Success: false, Error: "invalid message: " + err.Error()})
		return
	}
	if msg.Action != "saveJobApplication" {
		c.JSON(http.StatusOK, dtos.SaveResponse{Success: false, Error: "unknown action: " + msg.Action})
		return
	}
	if _, err := h.Records.Append(msg.Data); err != nil {
		h.Logger.Error("save message failed", zap.Error(err))
		c.JSON(http.StatusOK, dtos.SaveResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dtos.SaveResponse{Success: true})
}

// ListJobs is GET /jobs with optional status/company/days filters, most
// recent first.
func (h *JobHandler) ListJobs(c *gin.Context) {
	records, err := h.Records.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load applications: " + err.Error()})
		return
	}
	days := 0
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	records = h.Stats.Filter(records, c.Query("status"), c.Query("company"), days, time.Now())
	c.JSON(http.StatusOK, gin.H{"jobs": records, "count": len(records)})
}

// CreateJob is POST /jobs: the manual add form.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON format: " + err.Error()})
		return
	}
	record, err := h.Records.Append(models.JobRecord{
		Company:     req.Company,
		Position:    req.Position,
		Location:    req.Location,
		Salary:      req.Salary,
		Status:      models.ParseStatus(req.Status),
		Notes:       req.Notes,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrMissingRequired) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "failed to add job application: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, record)
}

// UpdateField is PATCH /jobs/:id/field. An unknown id is a no-op and reports
// updated=false rather than failing.
func (h *JobHandler) UpdateField(c *gin.Context) {
	var req dtos.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON format: " + err.Error()})
		return
	}
	updated, err := h.Records.UpdateField(c.Param("id"), req.Field, req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// UpdateStatus is PATCH /jobs/:id/status; unrecognized values coerce to
// applied.
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	var req dtos.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON format: " + err.Error()})
		return
	}
	updated, err := h.Records.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// BulkDelete is POST /jobs/delete. Irreversible; the UI has already asked the
// user.
func (h *JobHandler) BulkDelete(c *gin.Context) {
	var req dtos.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON format: " + err.Error()})
		return
	}
	removed, err := h.Records.BulkDelete(req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}

// ExportCSV is GET /jobs/export: the full store as a CSV attachment, display
// order.
func (h *JobHandler) ExportCSV(c *gin.Context) {
	records, err := h.Records.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export data: " + err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="job-applications.csv"`)
	c.Data(http.StatusOK, "text/csv", h.CSV.Export(records))
}

// ImportCSV is POST /jobs/import with the CSV file as the request body.
// Valid rows import even when siblings are dropped; a file that does not
// parse at all imports nothing. Re-importing the same file appends
// duplicates: the store has no natural key beyond id, and repeat
// applications to the same company/position are legitimate.
func (h *JobHandler) ImportCSV(c *gin.Context) {
	rows, err := h.CSV.Import(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to import data: " + err.Error()})
		return
	}
	imported, err := h.Records.BulkImport(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import data: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported})
}

// GetStats is GET /jobs/stats: the popup/chart summary payload.
func (h *JobHandler) GetStats(c *gin.Context) {
	records, err := h.Records.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load applications: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Stats.Summarize(records, time.Now()))
}
