package handler

import (
	"github.com/gofiber/fiber/v2"

	"tabqa/internal/service"
)

// RegisterRoutes attaches the HTTP routes to the provided Fiber app.
// Handlers only translate between HTTP and the services.
func RegisterRoutes(app *fiber.App, pinger Pinger, docSvc service.DocumentService, querySvc service.QueryService) {
	app.Get("/health", HealthCheck(pinger))
	app.Get("/healthz", LivenessProbe())

	app.Get("/documents", ListDocuments(docSvc))
	app.Post("/documents", UploadDocument(docSvc))
	app.Get("/documents/:id", GetDocument(docSvc))
	app.Delete("/documents/:id", DeleteDocument(docSvc))
	app.Post("/documents/:id/query", QueryDocument(querySvc))
	app.Get("/documents/:id/source", GetDocumentSource(docSvc))
	app.Get("/documents/:id/source/url", GetDocumentSourceURL(docSvc))
}
