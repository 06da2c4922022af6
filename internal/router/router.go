package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/habitkit/backend/api/handler"
)

type Handlers struct {
	Task     *apiHandler.TaskHandler
	Calendar *apiHandler.CalendarHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, accessLog func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/api/v1/tasks", accessLog(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", accessLog(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}", accessLog(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", accessLog(handlers.Task.DeleteTask))
	r.DELETE("/api/v1/tasks", accessLog(handlers.Task.DeleteAllTasks))
	r.POST("/api/v1/tasks/{id}/toggle", accessLog(handlers.Task.ToggleCompletion))
	r.POST("/api/v1/tasks/{id}/archive", accessLog(handlers.Task.ArchiveTask))

	r.GET("/api/v1/calendar/{year}/{month}", accessLog(handlers.Calendar.GetMonthView))
	r.GET("/api/v1/streaks/weekly", accessLog(handlers.Calendar.GetWeeklyStreak))

	r.GET("/api/v1/journal/recent", accessLog(handlers.Health.RecentMutations))

	return r
}
