package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pollsapi/internal/domain"
	"pollsapi/internal/http/middleware"
	"pollsapi/internal/model"
	"pollsapi/internal/service"
	serviceMocks "pollsapi/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func question(id int64, version int64) *model.Question {
	q := model.NewQuestion("What's up?", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	q.RootEntity = domain.NewRootEntity(domain.IntID(id), version)
	c := q.AddChoice("Not much")
	c.SetEntityID(domain.IntID(id * 10))
	return q
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	t.Run("in-memory store", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListPolls(t *testing.T) {
	mockSvc := new(serviceMocks.MockPollService)
	app := fiber.New()
	app.Get("/polls", ListPolls(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Index", mock.Anything).Return([]*model.Question{question(1, 1), question(2, 1)}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/polls", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Data, 2)
		assert.Equal(t, float64(1), body.Data[0]["id"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		mockSvc.On("Index", mock.Anything).Return(nil, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/polls", nil))
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":[]}`, string(b))
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Index", mock.Anything).Return(nil, errors.New("db down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/polls", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)
	})
}

func TestGetPoll(t *testing.T) {
	mockSvc := new(serviceMocks.MockPollService)
	app := fiber.New()
	app.Get("/polls/:id", GetPoll(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Detail", mock.Anything, int64(7)).Return(question(7, 2), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/polls/7", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, float64(7), body["id"])
		assert.Equal(t, float64(2), body["version"])
		assert.Len(t, body["choices"], 1)
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, raw := range []string{"abc", "0", "-4"} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/polls/"+raw, nil))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, raw)
			assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Detail", mock.Anything, int64(8)).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/polls/8", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})
}

func TestGetResults(t *testing.T) {
	mockSvc := new(serviceMocks.MockPollService)
	app := fiber.New()
	app.Get("/polls/:id/results", GetResults(mockSvc))

	mockSvc.On("Results", mock.Anything, int64(3)).Return(&service.ResultsView{
		QuestionID: 3,
		TotalVotes: 4,
		Choices:    []service.ChoiceResult{{ID: 30, Text: "a", Votes: 4}},
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/polls/3/results", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body service.ResultsView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 4, body.TotalVotes)
	assert.Equal(t, int64(30), body.Choices[0].ID)
	mockSvc.AssertExpectations(t)
}

func TestVote(t *testing.T) {
	mockSvc := new(serviceMocks.MockPollService)
	app := fiber.New()
	app.Use(middleware.RequestID())
	app.Post("/polls/:id/vote", Vote(mockSvc))

	post := func(body, contentType string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/polls/1/vote", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("json body", func(t *testing.T) {
		mockSvc.On("Vote", mock.Anything, int64(1), int64(10)).Return(question(1, 3), nil).Once()

		resp := post(`{"choice":10}`, fiber.MIMEApplicationJSON)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "/polls/1/results", resp.Header.Get("Location"))
	})

	t.Run("form body", func(t *testing.T) {
		mockSvc.On("Vote", mock.Anything, int64(1), int64(10)).Return(question(1, 4), nil).Once()

		resp := post("choice=10", fiber.MIMEApplicationForm)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("no choice selected", func(t *testing.T) {
		resp := post(`{}`, fiber.MIMEApplicationJSON)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_CHOICE", body.Error.Code)
		assert.Equal(t, "You didn't select a choice.", body.Error.Message)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("missing body", func(t *testing.T) {
		resp := post("", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_CHOICE", decodeError(t, resp).Error.Code)
	})

	t.Run("unknown choice", func(t *testing.T) {
		mockSvc.On("Vote", mock.Anything, int64(1), int64(99)).Return(nil, service.ErrChoiceNotFound).Once()

		resp := post(`{"choice":99}`, fiber.MIMEApplicationJSON)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_CHOICE", decodeError(t, resp).Error.Code)
	})

	t.Run("unpublished question", func(t *testing.T) {
		mockSvc.On("Vote", mock.Anything, int64(1), int64(12)).Return(nil, service.ErrNotFound).Once()

		resp := post(`{"choice":12}`, fiber.MIMEApplicationJSON)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("conflict", func(t *testing.T) {
		mockSvc.On("Vote", mock.Anything, int64(1), int64(11)).
			Return(nil, fmt.Errorf("vote on question 1: %w", service.ErrConflict)).Once()

		resp := post(`{"choice":11}`, fiber.MIMEApplicationJSON)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "VERSION_CONFLICT", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestListQuestions(t *testing.T) {
	mockSvc := new(serviceMocks.MockAdminService)
	app := fiber.New()
	app.Get("/admin/questions", ListQuestions(mockSvc))

	t.Run("passes filters through", func(t *testing.T) {
		after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		mockSvc.On("Search", mock.Anything, service.AdminQuery{
			Text:           "tea",
			PublishedAfter: after,
			Limit:          5,
			Offset:         10,
		}).Return(&service.QuestionListResult{
			Items: []service.QuestionListItem{{Question: question(1, 1), WasPublishedRecently: true}},
			Limit: 5, Offset: 10,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet,
			"/admin/questions?q=tea&published_after=2026-01-01T00:00:00Z&limit=5&offset=10", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Data   []map[string]any `json:"data"`
			Limit  int              `json:"limit"`
			Offset int              `json:"offset"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, true, body.Data[0]["was_published_recently"])
		assert.Equal(t, float64(1), body.Data[0]["id"])
		assert.Equal(t, 5, body.Limit)
		mockSvc.AssertExpectations(t)
	})

	bad := map[string]string{
		"/admin/questions?limit=abc":               "INVALID_LIMIT",
		"/admin/questions?offset=x":                "INVALID_OFFSET",
		"/admin/questions?published_after=monday":  "INVALID_DATE",
		"/admin/questions?published_before=friday": "INVALID_DATE",
	}
	for target, code := range bad {
		t.Run(code+" "+target, func(t *testing.T) {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, code, decodeError(t, resp).Error.Code)
		})
	}
}

func TestCreateQuestion(t *testing.T) {
	mockSvc := new(serviceMocks.MockAdminService)
	app := fiber.New()
	app.Post("/admin/questions", CreateQuestion(mockSvc))

	t.Run("created", func(t *testing.T) {
		pub := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		mockSvc.On("Create", mock.Anything, service.QuestionInput{
			Text:    "Tea?",
			PubDate: pub,
			Choices: []service.ChoiceInput{{Text: "Yes"}},
		}).Return(question(5, 1), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/admin/questions",
			strings.NewReader(`{"question_text":"Tea?","pub_date":"2026-03-01T09:00:00Z","choices":[{"choice_text":"Yes"}]}`))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "/admin/questions/5", resp.Header.Get("Location"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation failure", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: question_text is required", service.ErrInvalidInput)).Once()

		req := httptest.NewRequest(http.MethodPost, "/admin/questions", strings.NewReader(`{"question_text":""}`))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Contains(t, body.Error.Message, "question_text")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/questions", strings.NewReader(`{`))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})
}

func TestUpdateQuestion(t *testing.T) {
	mockSvc := new(serviceMocks.MockAdminService)
	app := fiber.New()
	app.Put("/admin/questions/:id", UpdateQuestion(mockSvc))

	put := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPut, "/admin/questions/5", strings.NewReader(body))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("updated", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, int64(5), mock.MatchedBy(func(in service.QuestionInput) bool {
			return in.Version == 2 && len(in.Choices) == 1 && in.Choices[0].ID == 50
		})).Return(question(5, 3), nil).Once()

		resp := put(`{"question_text":"Tea?","pub_date":"2026-03-01T09:00:00Z","version":2,"choices":[{"id":50,"choice_text":"Yes"}]}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("stale version", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, int64(5), mock.Anything).Return(nil, service.ErrConflict).Once()

		resp := put(`{"question_text":"Tea?","pub_date":"2026-03-01T09:00:00Z","version":1}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "VERSION_CONFLICT", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestDeleteQuestion(t *testing.T) {
	mockSvc := new(serviceMocks.MockAdminService)
	app := fiber.New()
	app.Delete("/admin/questions/:id", DeleteQuestion(mockSvc))

	t.Run("with version", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, int64(5), int64(2)).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/admin/questions/5?version=2", nil))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, int64(6), int64(0)).Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/admin/questions/6", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid version", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/admin/questions/5?version=abc", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_VERSION", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestExportResults(t *testing.T) {
	mockSvc := new(serviceMocks.MockAdminService)
	app := fiber.New()
	app.Post("/admin/questions/:id/export", ExportResults(mockSvc))

	t.Run("exported", func(t *testing.T) {
		mockSvc.On("ExportResults", mock.Anything, int64(5)).Return(&service.ExportResult{
			Key: "exports/questions/5/a.json",
			URL: "https://minio.local/a.json",
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/admin/questions/5/export", nil))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body service.ExportResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "https://minio.local/a.json", body.URL)
	})

	t.Run("disabled", func(t *testing.T) {
		mockSvc.On("ExportResults", mock.Anything, int64(6)).Return(nil, service.ErrExportDisabled).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/admin/questions/6/export", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "EXPORT_DISABLED", decodeError(t, resp).Error.Code)
	})
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/bad", func(c *fiber.Ctx) error { return fiber.ErrBadRequest })

	tests := []struct {
		method string
		target string
		status int
		code   string
	}{
		{http.MethodGet, "/boom", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{http.MethodGet, "/bad", http.StatusBadRequest, "BAD_REQUEST"},
		{http.MethodGet, "/nowhere", http.StatusNotFound, "NOT_FOUND"},
		{http.MethodPost, "/boom", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			resp, _ := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decodeError(t, resp)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestRegisterRoutes(t *testing.T) {
	polls := new(serviceMocks.MockPollService)
	admin := new(serviceMocks.MockAdminService)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, nil, polls, admin)

	polls.On("Index", mock.Anything).Return([]*model.Question{}, nil).Once()
	admin.On("Search", mock.Anything, service.AdminQuery{}).Return(&service.QuestionListResult{}, nil).Once()

	for _, target := range []string{"/polls", "/admin/questions", "/health", "/healthz"} {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
	}
	polls.AssertExpectations(t)
	admin.AssertExpectations(t)
}
