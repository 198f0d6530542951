package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Register mounts the API under /api/v1. validator checks requests against
// the contract and may be nil.
func (s *Server) Register(e *echo.Echo, validator echo.MiddlewareFunc) {
	api := e.Group("/api/v1")
	if validator != nil {
		api.Use(validator)
	}
	upload := middleware.BodyLimit("12M")

	api.POST("/sync", s.Synchronize)

	api.GET("/tasks", s.ListTasks)
	api.POST("/tasks/bulk", s.BulkExecute)
	api.POST("/tasks/:taskId/assign", s.AssignTask)
	api.POST("/tasks/:taskId/unassign", s.CancelAssignment)
	api.POST("/tasks/:taskId/transition", s.TransitionTask)
	api.POST("/tasks/:taskId/proof", s.CompleteWithProof, upload)
	api.GET("/tasks/:taskId/audit", s.GetTaskAudit)

	api.GET("/drivers", s.ListDrivers)
	api.POST("/drivers", s.CreateDriver)
	api.GET("/drivers/:driverId/queue", s.GetDriverQueue)

	own := api.Group("/driver", s.authenticateDriver)
	own.GET("/queue", s.GetOwnQueue)
	own.POST("/tasks/:taskId/pickup", s.PickUpOwnTask)
	own.POST("/tasks/:taskId/proof", s.CompleteOwnTask, upload)
}
