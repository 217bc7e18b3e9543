package handler

import (
	"github.com/gofiber/fiber/v2"

	"tabqa/internal/service"
)

type queryRequest struct {
	Question string `json:"question" form:"question"`
}

// QueryDocument answers a question against one document.
//
// @Summary Ask a question about a document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param body body queryRequest true "question"
// @Success 200 {object} model.Answer
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /documents/{id}/query [post]
func QueryDocument(svc service.QueryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return documentNotFound(c)
		}

		var req queryRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		ans, err := svc.Answer(c.UserContext(), id, req.Question)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(ans)
	}
}
