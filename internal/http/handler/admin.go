package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"pollsapi/internal/service"
)

// ListQuestions is the admin change list.
//
// @Summary  Search questions
// @Tags     admin
// @Produce  json
// @Param    q                 query  string  false  "Text contains"
// @Param    published_after   query  string  false  "RFC3339 lower bound"
// @Param    published_before  query  string  false  "RFC3339 upper bound"
// @Param    limit             query  int     false  "Page size"
// @Param    offset            query  int     false  "Offset"
// @Success  200 {object} service.QuestionListResult
// @Failure  400 {object} errorPayload
// @Router   /admin/questions [get]
func ListQuestions(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aq := service.AdminQuery{Text: c.Query("q")}

		var err error
		if aq.Limit, err = strconv.Atoi(c.Query("limit", "0")); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		if aq.Offset, err = strconv.Atoi(c.Query("offset", "0")); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		if aq.PublishedAfter, err = parseTimeQuery(c, "published_after"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "published_after must be RFC3339")
		}
		if aq.PublishedBefore, err = parseTimeQuery(c, "published_before"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "published_before must be RFC3339")
		}

		res, err := svc.Search(c.UserContext(), aq)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetQuestion returns a question whatever its publication date.
//
// @Summary  Get question
// @Tags     admin
// @Produce  json
// @Param    id  path     int  true  "Question ID"
// @Success  200 {object} model.Question
// @Failure  404 {object} errorPayload
// @Router   /admin/questions/{id} [get]
func GetQuestion(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		q, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(q)
	}
}

// CreateQuestion adds a question with its choices.
//
// @Summary  Create question
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    body  body     service.QuestionInput  true  "Question"
// @Success  201 {object} model.Question
// @Failure  400 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /admin/questions [post]
func CreateQuestion(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.QuestionInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		q, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Location("/admin/questions/" + strconv.FormatInt(idOfQuestion(q), 10))
		return c.Status(fiber.StatusCreated).JSON(q)
	}
}

// UpdateQuestion replaces a question. The body must carry the version it was read at.
//
// @Summary  Update question
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    id    path     int                    true  "Question ID"
// @Param    body  body     service.QuestionInput  true  "Question"
// @Success  200 {object} model.Question
// @Failure  404 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /admin/questions/{id} [put]
func UpdateQuestion(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.QuestionInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		q, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(q)
	}
}

// DeleteQuestion removes a question and its choices.
//
// @Summary  Delete question
// @Tags     admin
// @Param    id       path   int  true   "Question ID"
// @Param    version  query  int  false  "Expected version"
// @Success  204
// @Failure  404 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /admin/questions/{id} [delete]
func DeleteQuestion(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		version, err := strconv.ParseInt(c.Query("version", "0"), 10, 64)
		if err != nil || version < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "invalid version")
		}
		if err := svc.Delete(c.UserContext(), id, version); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ExportResults snapshots the results to object storage.
//
// @Summary  Export results
// @Tags     admin
// @Produce  json
// @Param    id  path     int  true  "Question ID"
// @Success  201 {object} service.ExportResult
// @Failure  404 {object} errorPayload
// @Failure  503 {object} errorPayload
// @Router   /admin/questions/{id}/export [post]
func ExportResults(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.ExportResults(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

func parseTimeQuery(c *fiber.Ctx, key string) (time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}
