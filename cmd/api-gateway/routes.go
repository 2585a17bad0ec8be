package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/practicum-journal-api/internal/handler"
)

type routeHandlers struct {
	observations *handler.ObservationHandler
	journal      *handler.JournalHandler
	calendar     *handler.CalendarHandler
	exports      *handler.ExportHandler
	profile      *handler.ProfileHandler
}

// registerRoutes mounts the API under prefix. auth guards everything except
// the signed download route, which carries its own token.
func registerRoutes(api *gin.RouterGroup, auth gin.HandlerFunc, h routeHandlers) {
	api.GET("/exports/download/:token", h.exports.Download)

	secured := api.Group("")
	secured.Use(auth)

	secured.GET("/me", h.profile.Me)
	secured.PUT("/me/semester", h.profile.UpdateSemester)
	secured.PUT("/me/name", h.profile.UpdateName)
	secured.GET("/semesters", h.profile.Semesters)

	secured.GET("/observations", h.observations.List)
	secured.POST("/observations", h.observations.Create)
	secured.GET("/observations/:id", h.observations.Get)
	secured.PUT("/observations/:id", h.observations.Update)
	secured.DELETE("/observations/:id", h.observations.Delete)
	secured.POST("/observations/:id/entries", h.observations.AddEntry)
	secured.PUT("/observations/:id/sheet", h.observations.SaveSheet)
	secured.GET("/observations/:id/pdf", h.observations.PDF)
	secured.GET("/observations/:id/export", h.observations.Export)
	secured.PUT("/entries/:id", h.observations.UpdateEntry)
	secured.DELETE("/entries/:id", h.observations.DeleteEntry)

	secured.GET("/journal", h.journal.List)
	secured.POST("/journal", h.journal.Create)
	secured.GET("/journal/export", h.journal.Export)
	secured.GET("/journal/:id", h.journal.Get)
	secured.PUT("/journal/:id", h.journal.Update)
	secured.DELETE("/journal/:id", h.journal.Delete)
	secured.GET("/journal/:id/pdf", h.journal.PDF)

	secured.GET("/calendar", h.calendar.Month)

	secured.POST("/exports", h.exports.Create)
	secured.GET("/exports/:id", h.exports.Status)
}
