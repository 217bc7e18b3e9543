package handler

import (
	"path"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tabqa/internal/model"
	"tabqa/internal/service"
)

// ingestResponse is returned by a successful ingest.
type ingestResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata model.Metadata `json:"metadata"`
}

type ingestPathBody struct {
	Path string `json:"path" form:"path"`
}

type sourceURLResponse struct {
	URL string `json:"url"`
}

// validID reports whether id can name a document. IDs are UUIDs, so anything
// else cannot exist and is answered as not found without a store lookup.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func documentNotFound(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
}

// ListDocuments returns one page of document summaries.
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Param limit query int false "page size (default 10, max 100)"
// @Param offset query int false "items to skip"
// @Success 200 {object} service.DocumentListResult
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument ingests a table sent as multipart field "file", or read by
// the server from the form or JSON field "path".
//
// @Summary Ingest a table
// @Tags documents
// @Accept mpfd,json
// @Produce json
// @Param file formData file false "CSV, TSV or XLSX file"
// @Param path formData string false "file path readable by the server"
// @Success 201 {object} ingestResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.IngestRequest

		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()
			req.Reader = f
			req.Filename = fh.Filename
		}

		req.ServerPath = c.FormValue("path")
		if req.ServerPath == "" && strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			var body ingestPathBody
			if err := c.BodyParser(&body); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
			req.ServerPath = body.Path
		}

		if req.Reader == nil && req.ServerPath == "" {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file or path is required")
		}

		doc, err := svc.Ingest(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ingestResponse{
			ID:       doc.ID,
			Name:     doc.Name,
			Metadata: doc.Metadata,
		})
	}
}

// GetDocument returns a document with its rendered text and metadata.
//
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return documentNotFound(c)
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document. Deleting an absent document answers 404.
//
// @Summary Delete a document
// @Tags documents
// @Param id path string true "document id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return documentNotFound(c)
		}
		deleted, err := svc.Delete(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if !deleted {
			return documentNotFound(c)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetDocumentSource streams the archived original upload.
//
// @Summary Download the original upload
// @Tags documents
// @Produce octet-stream
// @Param id path string true "document id"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /documents/{id}/source [get]
func GetDocumentSource(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return documentNotFound(c)
		}
		rc, info, err := svc.OpenSource(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Attachment(path.Base(info.Key))
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		// fasthttp closes rc once the body is written
		return c.SendStream(rc, int(info.Size))
	}
}

// GetDocumentSourceURL returns a presigned URL for the archived original upload.
//
// @Summary Presigned URL of the original upload
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} sourceURLResponse
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /documents/{id}/source/url [get]
func GetDocumentSourceURL(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return documentNotFound(c)
		}
		u, err := svc.SourceURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sourceURLResponse{URL: u})
	}
}
