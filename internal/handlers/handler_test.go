package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/applytrack/applytrackd/internal/database"
	"github.com/applytrack/applytrackd/internal/models"
	"github.com/applytrack/applytrackd/internal/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to connect to database")
	require.NoError(t, db.AutoMigrate(&database.Slot{}), "failed to migrate database")

	logger := zap.NewNop()
	records := services.NewRecordService(db, logger)
	jobs := NewJobHandler(records, services.NewCSVService(logger), services.NewStatsService(), logger)
	captures := NewCaptureHandler(records, logger)
	return NewRouter(jobs, captures)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestSaveMessageSuccess(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/messages", gin.H{
		"action": "saveJobApplication",
		"data":   gin.H{"company": "Acme", "position": "Engineer", "url": "https://example.com/job"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "error")

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs", nil)
	body = decode(t, w)
	assert.Equal(t, float64(1), body["count"])
}

func TestSaveMessageUnknownAction(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/messages", gin.H{
		"action": "deleteEverything",
		"data":   gin.H{"company": "Acme", "position": "Engineer"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "unknown action")
}

func TestSaveMessageMissingRequired(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/messages", gin.H{
		"action": "saveJobApplication",
		"data":   gin.H{"company": "", "position": "Engineer"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestCreateJobAndList(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", gin.H{
		"company": "Acme", "position": "Engineer", "status": "INTERVIEW",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "interview", created["status"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs?status=interview", nil)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs?status=rejected", nil)
	body = decode(t, w)
	assert.Equal(t, float64(0), body["count"])
}

func TestCreateJobMissingRequired(t *testing.T) {
	r := setupRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", gin.H{"company": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateFieldAndStatus(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", gin.H{"company": "Acme", "position": "Engineer"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = doJSON(t, r, http.MethodPatch, "/api/v1/jobs/"+id+"/field", gin.H{"field": "location", "value": "Remote"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["updated"])

	w = doJSON(t, r, http.MethodPatch, "/api/v1/jobs/"+id+"/status", gin.H{"status": "bogus"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["updated"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs", nil)
	jobs := decode(t, w)["jobs"].([]any)
	require.Len(t, jobs, 1)
	job := jobs[0].(map[string]any)
	assert.Equal(t, "Remote", job["location"])
	assert.Equal(t, "applied", job["status"])

	w = doJSON(t, r, http.MethodPatch, "/api/v1/jobs/missing/field", gin.H{"field": "location", "value": "x"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["updated"])

	w = doJSON(t, r, http.MethodPatch, "/api/v1/jobs/"+id+"/field", gin.H{"field": "id", "value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkDeleteEndpoint(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", gin.H{"company": "Acme", "position": "Engineer"})
	id := decode(t, w)["id"].(string)
	doJSON(t, r, http.MethodPost, "/api/v1/jobs", gin.H{"company": "Beta", "position": "Dev"})

	w = doJSON(t, r, http.MethodPost, "/api/v1/jobs/delete", gin.H{"ids": []string{id, "missing"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["deleted"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs", nil)
	assert.Equal(t, float64(1), decode(t, w)["count"])
}

func TestExportCSVEndpoint(t *testing.T) {
	r := setupRouter(t)
	doJSON(t, r, http.MethodPost, "/api/v1/jobs", gin.H{"company": "Acme", "position": "Engineer"})

	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "job-applications.csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), `"Company","Position","Location"`))
	assert.Contains(t, w.Body.String(), `"Acme"`)
}

func TestImportCSVEndpoint(t *testing.T) {
	r := setupRouter(t)

	csv := "Company,Position,Status\nAcme,Engineer,applied\n,missing,applied\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["imported"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs", nil)
	assert.Equal(t, float64(1), decode(t, w)["count"])
}

func TestImportCSVEmptyFile(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/import", strings.NewReader("Company,Position,Status\n"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	r := setupRouter(t)
	doJSON(t, r, http.MethodPost, "/api/v1/jobs", gin.H{"company": "Acme", "position": "Engineer", "location": "Berlin"})

	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["thisWeek"])
	counts := body["statusCounts"].(map[string]any)
	assert.Equal(t, float64(1), counts["applied"])
}

func TestExtractEndpoint(t *testing.T) {
	r := setupRouter(t)

	html := `<html><body>
		<a class="topcard__org-name-link">Acme</a>
		<h1 class="topcard__title">Engineer</h1>
		<span class="topcard__flavor--bullet">Berlin</span>
	</body></html>`
	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs/extract", gin.H{
		"raw_html": html,
		"url":      "https://www.linkedin.com/jobs/view/123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["matched"])
	assert.Equal(t, "linkedin.com", body["site"])
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "Acme", draft["company"])
	assert.Equal(t, "Engineer", draft["position"])
	assert.Equal(t, "Berlin", draft["location"])
}

func TestExtractEndpointUnmatchedHost(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs/extract", gin.H{
		"raw_html": "<html><body></body></html>",
		"url":      "https://jobs.example.org/posting/1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["matched"])
	assert.NotContains(t, body, "draft")
}

func TestDetectEndpoint(t *testing.T) {
	r := setupRouter(t)

	html := `<html><body><button class="jobs-apply-button" id="apply">Apply now</button></body></html>`
	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs/detect", gin.H{
		"raw_html": html,
		"url":      "https://www.linkedin.com/jobs/view/123",
		"target":   "#apply",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["apply"])

	html = `<html><body><button id="share">Share</button></body></html>`
	w = doJSON(t, r, http.MethodPost, "/api/v1/jobs/detect", gin.H{
		"raw_html": html,
		"url":      "https://www.linkedin.com/jobs/view/123",
		"target":   "#share",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["apply"])
}

func TestPendingCaptureCycle(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/capture/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["show"])

	pending := models.PendingCapture{
		Show: true,
		JobData: models.DraftCapture{
			Company: "Acme", Position: "Engineer",
			URL: "https://example.com/job", Site: "linkedin.com",
		},
	}
	w = doJSON(t, r, http.MethodPut, "/api/v1/capture/pending", pending)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/capture/pending", nil)
	body := decode(t, w)
	assert.Equal(t, true, body["show"])
	jobData := body["jobData"].(map[string]any)
	assert.Equal(t, "Acme", jobData["company"])

	w = doJSON(t, r, http.MethodDelete, "/api/v1/capture/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/capture/pending", nil)
	assert.Equal(t, false, decode(t, w)["show"])
}
