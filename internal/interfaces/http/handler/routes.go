package handler

import (
	"github.com/labelprint/backend/internal/interfaces/http/router"
)

// LabelRoutes creates the route group for label printing and history
func LabelRoutes(handler *LabelHandler) *router.DomainGroup {
	group := router.NewDomainGroup("labels", "")

	group.POST("/print", handler.Print)
	group.POST("/print/batch", handler.PrintBatch)
	group.GET("/print/status/:label_id", handler.PrintStatus)

	group.GET("/history", handler.History)
	group.DELETE("/history", handler.ClearHistory)

	return group
}

// SheetRoutes creates the route group for production sheets
func SheetRoutes(handler *SheetHandler) *router.DomainGroup {
	group := router.NewDomainGroup("sheets", "")

	group.POST("/print/bulk-sheet", handler.Print)
	group.POST("/preview/bulk-sheet", handler.Preview)

	records := group.Group("records", "/production-records")
	records.GET("", handler.ListRecords)
	records.GET("/:date/:shift", handler.GetRecord)
	records.DELETE("/:date/:shift", handler.DeleteRecord)

	return group
}

// SystemRoutes creates the route group for diagnostics and settings
func SystemRoutes(handler *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "")

	group.GET("/status", handler.Status)
	group.GET("/printers", handler.Printers)
	group.GET("/settings", handler.GetSettings)
	group.PUT("/settings", handler.UpdateSettings)

	return group
}

// RootRoutes creates the routes served outside /api
func RootRoutes(label *LabelHandler, system *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("root", "")

	group.GET("/preview", label.Preview)
	group.POST("/preview", label.Preview)
	group.GET("/health", system.Health)

	return group
}
