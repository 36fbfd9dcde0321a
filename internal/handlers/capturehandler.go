package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/applytrack/applytrackd/internal/dtos"
	"github.com/applytrack/applytrackd/internal/extract"
	"github.com/applytrack/applytrackd/internal/models"
	"github.com/applytrack/applytrackd/internal/selectors"
	"github.com/applytrack/applytrackd/internal/services"
)

// CaptureHandler serves the page-side flow: selector-based extraction,
// apply-click detection, and the pending-capture checkpoint slot that lets a
// reloaded page resurrect its open form.
type CaptureHandler struct {
	Records *services.RecordService
	Logger  *zap.Logger
}

func NewCaptureHandler(records *services.RecordService, logger *zap.Logger) *CaptureHandler {
	return &CaptureHandler{Records: records, Logger: logger}
}

// Extract is POST /jobs/extract: raw page HTML in, a pre-filled draft out.
// A hostname with no selector-table entry answers matched=false; the page
// side stays inactive there.
func (h *CaptureHandler) Extract(c *gin.Context) {
	var req dtos.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON format: " + err.Error()})
		return
	}
	entry, doc, err := h.parsePage(req.RawHTML, req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, dtos.ExtractResponse{Matched: false})
		return
	}
	draft := extract.Extract(doc, entry, req.URL)
	h.Logger.Info("extracted job info",
		zap.String("site", entry.Match),
		zap.String("company", draft.Company),
		zap.String("position", draft.Position))
	c.JSON(http.StatusOK, dtos.ExtractResponse{Matched: true, Site: entry.Match, Draft: &draft})
}

// Detect is POST /jobs/detect: did this click mean "apply"?
func (h *CaptureHandler) Detect(c *gin.Context) {
	var req dtos.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON format: " + err.Error()})
		return
	}
	entry, doc, err := h.parsePage(req.RawHTML, req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"apply": false})
		return
	}
	target := extract.FindTarget(doc, req.Target)
	c.JSON(http.StatusOK, gin.H{"apply": extract.IsApplyClick(target, &entry.Config)})
}

// GetPending is GET /capture/pending: the checkpoint, or show=false when no
// capture is open.
func (h *CaptureHandler) GetPending(c *gin.Context) {
	pending, err := h.Records.LoadPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pending capture: " + err.Error()})
		return
	}
	if pending == nil {
		c.JSON(http.StatusOK, models.PendingCapture{Show: false})
		return
	}
	c.JSON(http.StatusOK, pending)
}

// PutPending is PUT /capture/pending: written when a fresh detection opens a
// form.
func (h *CaptureHandler) PutPending(c *gin.Context) {
	var pending models.PendingCapture
	if err := c.ShouldBindJSON(&pending); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON format: " + err.Error()})
		return
	}
	if err := h.Records.SavePending(pending); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save pending capture: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// DeletePending is DELETE /capture/pending: cleared on close, cancel or
// successful submit.
func (h *CaptureHandler) DeletePending(c *gin.Context) {
	if err := h.Records.ClearPending(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear pending capture: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (h *CaptureHandler) parsePage(rawHTML, pageURL string) (*selectors.SiteEntry, *goquery.Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, err
	}
	entry := selectors.Lookup(u.Hostname())
	if entry == nil {
		return nil, nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, nil, err
	}
	return entry, doc, nil
}
