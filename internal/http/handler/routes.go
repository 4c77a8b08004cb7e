package handler

import (
	"github.com/gofiber/fiber/v2"

	"pollsapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// db may be nil when the service runs on the in-memory store.
func RegisterRoutes(app *fiber.App, db Pinger, polls service.PollService, admin service.AdminService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	p := app.Group("/polls")
	p.Get("/", ListPolls(polls))
	p.Get("/:id", GetPoll(polls))
	p.Get("/:id/results", GetResults(polls))
	p.Post("/:id/vote", Vote(polls))

	a := app.Group("/admin/questions")
	a.Get("/", ListQuestions(admin))
	a.Post("/", CreateQuestion(admin))
	a.Get("/:id", GetQuestion(admin))
	a.Put("/:id", UpdateQuestion(admin))
	a.Delete("/:id", DeleteQuestion(admin))
	a.Post("/:id/export", ExportResults(admin))
}
