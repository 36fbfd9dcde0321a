package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the /api/v1 routes. CORS is wide open because the callers
// are extension pages on job-board origins.
func NewRouter(jobs *JobHandler, captures *CaptureHandler) *gin.Engine {
	r := gin.Default()
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		api.POST("/jobs/extract", captures.Extract)
		api.POST("/jobs/detect", captures.Detect)
		api.GET("/capture/pending", captures.GetPending)
		api.PUT("/capture/pending", captures.PutPending)
		api.DELETE("/capture/pending", captures.DeletePending)

		api.POST("/messages", jobs.SaveMessage)
		api.GET("/jobs", jobs.ListJobs)
		api.POST("/jobs", jobs.CreateJob)
		api.PATCH("/jobs/:id/field", jobs.UpdateField)
		api.PATCH("/jobs/:id/status", jobs.UpdateStatus)
		api.POST("/jobs/delete", jobs.BulkDelete)
		api.POST("/jobs/import", jobs.ImportCSV)
		api.GET("/jobs/export", jobs.ExportCSV)
		api.GET("/jobs/stats", jobs.GetStats)
	}
	return r
}
