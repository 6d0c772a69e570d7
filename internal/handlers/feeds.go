package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/feeds"
	"github.com/jjenkins/parliament/internal/feed"
	"github.com/jjenkins/parliament/internal/model"
	"golang.org/x/sync/errgroup"
)

const rssContentType = "application/rss+xml; charset=utf-8"

// BillListFeedHandler serves /bills/feed/
func BillListFeedHandler(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bills, err := env.Bills.Newest(c.UserContext(), feed.NewestBillsLimit)
		if err != nil {
			return serverError(c, env.Log, "Error loading bills", err)
		}
		return sendRSS(c, env, feed.NewestBills(bills, env.SiteURL))
	}
}

// BillFeedHandler serves /bills/{id}/feed/, the latest speeches and votes
// about one bill
func BillFeedHandler(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return notFound(c, "Bill")
		}

		ctx := c.UserContext()
		bill, err := env.Bills.GetByID(ctx, int64(id))
		if err != nil {
			return serverError(c, env.Log, "Error loading bill", err)
		}
		if bill == nil {
			return notFound(c, "Bill")
		}

		var (
			statements []model.Statement
			votes      []model.VoteQuestion
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			statements, err = env.Statements.Statements().
				Where("bill.id", bill.ID).
				Limit(feed.ActivityStatement).
				All(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			votes, err = env.Votes.Questions().
				Where("bill.id", bill.ID).
				OrderBy("-date", "-number").
				Limit(feed.ActivityVotes).
				All(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return serverError(c, env.Log, "Error loading bill activity", err)
		}

		return sendRSS(c, env, feed.BillActivity(*bill, feed.Merge(votes, statements), env.SiteURL))
	}
}

func sendRSS(c *fiber.Ctx, env *Env, f *feeds.Feed) error {
	rss, err := f.ToRss()
	if err != nil {
		return serverError(c, env.Log, "Error rendering feed", err)
	}
	c.Set(fiber.HeaderContentType, rssContentType)
	return c.SendString(rss)
}
