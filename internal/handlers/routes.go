package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Register mounts every public route. Fixed paths come before the
// parameterised ones they would otherwise be captured by.
func Register(app *fiber.App, env *Env) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/bills/", fiber.StatusFound)
	})

	bills := app.Group("/bills")
	bills.Get("/", BillListHandler(env))
	bills.Get("/feed", BillListFeedHandler(env))
	bills.Get("/:id<int>/feed", BillFeedHandler(env))
	bills.Get("/:id<int>", BillRedirectHandler(env))
	bills.Get("/:session", BillSessionHandler(env))
	bills.Get("/:session/:number", BillDetailHandler(env))

	votes := app.Group("/votes")
	votes.Get("/", VoteListHandler(env))
	votes.Get("/ballots", BallotListHandler(env))
	votes.Get("/:id<int>", VoteRedirectHandler(env))
	votes.Get("/:session", VoteSessionHandler(env))
	votes.Get("/:session/:number<int>", VoteDetailHandler(env))
}
