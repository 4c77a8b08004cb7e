package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pollsapi/internal/domain"
	"pollsapi/internal/model"
	"pollsapi/internal/service"
)

// questionList wraps a slice so the top-level JSON value is an object.
type questionList struct {
	Items []*model.Question `json:"data"`
}

type voteRequest struct {
	Choice int64 `json:"choice" form:"choice"`
}

// parseID reads the :id route parameter as a positive integer.
func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func idOfQuestion(q *model.Question) int64 {
	id, err := domain.AsIntID(q.EntityID())
	if err != nil {
		return 0
	}
	return id.Int64()
}

// ListPolls returns the latest published questions.
//
// @Summary  Latest published questions
// @Tags     polls
// @Produce  json
// @Success  200 {object} questionList
// @Failure  500 {object} errorPayload
// @Router   /polls [get]
func ListPolls(svc service.PollService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Index(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		if items == nil {
			items = []*model.Question{}
		}
		return c.JSON(questionList{Items: items})
	}
}

// GetPoll returns one published question with its choices.
//
// @Summary  Question detail
// @Tags     polls
// @Produce  json
// @Param    id  path     int  true  "Question ID"
// @Success  200 {object} model.Question
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /polls/{id} [get]
func GetPoll(svc service.PollService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		q, err := svc.Detail(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(q)
	}
}

// GetResults returns the vote tally of a question.
//
// @Summary  Question results
// @Tags     polls
// @Produce  json
// @Param    id  path     int  true  "Question ID"
// @Success  200 {object} service.ResultsView
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /polls/{id}/results [get]
func GetResults(svc service.PollService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.Results(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Vote records one vote. The Location header points at the results.
//
// @Summary  Vote for a choice
// @Description Only published questions accept votes; a question with a future pub_date is reported as 404.
// @Tags     polls
// @Accept   json,x-www-form-urlencoded
// @Produce  json
// @Param    id    path     int          true  "Question ID"
// @Param    body  body     voteRequest  true  "Selected choice"
// @Success  200 {object} model.Question
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /polls/{id}/vote [post]
func Vote(svc service.PollService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req voteRequest
		if err := c.BodyParser(&req); err != nil || req.Choice <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CHOICE", "You didn't select a choice.")
		}

		q, err := svc.Vote(c.UserContext(), id, req.Choice)
		if err != nil {
			if errors.Is(err, service.ErrChoiceNotFound) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_CHOICE", "You didn't select a choice.")
			}
			return writeServiceError(c, err)
		}

		c.Location("/polls/" + strconv.FormatInt(id, 10) + "/results")
		return c.JSON(q)
	}
}
