package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// permanentCache lets clients and proxies keep a redirect for a year
const permanentCache = "public, max-age=31536000"

// BillRedirectHandler serves /bills/{id}/, sending legacy numeric links to
// the bill's canonical URL
func BillRedirectHandler(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return notFound(c, "Bill")
		}

		bill, err := env.Bills.GetByID(c.UserContext(), int64(id))
		if err != nil {
			return serverError(c, env.Log, "Error loading bill", err)
		}
		if bill == nil {
			return notFound(c, "Bill")
		}

		c.Set(fiber.HeaderCacheControl, permanentCache)
		return c.Redirect(bill.URL(), fiber.StatusMovedPermanently)
	}
}

// VoteRedirectHandler serves /votes/{id}/
func VoteRedirectHandler(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return notFound(c, "Vote")
		}

		vote, err := env.Votes.GetByID(c.UserContext(), int64(id))
		if err != nil {
			return serverError(c, env.Log, "Error loading vote", err)
		}
		if vote == nil {
			return notFound(c, "Vote")
		}

		c.Set(fiber.HeaderCacheControl, permanentCache)
		return c.Redirect(vote.URL(), fiber.StatusMovedPermanently)
	}
}
