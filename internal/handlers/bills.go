package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/parliament/internal/filter"
	"github.com/jjenkins/parliament/internal/model"
	"github.com/jjenkins/parliament/internal/paginate"
	"github.com/jjenkins/parliament/internal/templates"
	"golang.org/x/sync/errgroup"
)

// statementsPerPage is the page size of a bill's debate
const statementsPerPage = 10

// recentVotes is how many votes the bill listings show
const recentVotes = 6

var billFilters = filter.NewRegistry(map[string]filter.Descriptor{
	"session": filter.Field("session", filter.KindText, "e.g. 41-1"),
	"introduced": filter.Field("introduced", filter.KindDate,
		"date bill was introduced, e.g. introduced__gt=2010-01-01", filter.NumericOperators...),
	"legisinfo_id": filter.Field("legisinfo_id", filter.KindInt,
		"integer ID assigned by parl.gc.ca's LEGISinfo"),
	"number": filter.Field("bill.number", filter.KindText,
		"a string, not an integer: e.g. C-10"),
	"law": filter.Field("bill.law", filter.KindBool,
		"did it become law? True, False"),
	"private_member_bill": filter.Field("bill.privatemember", filter.KindBool,
		"is it a private member's bill? True, False"),
	"sponsor_politician": filter.Politician("sponsor_politician"),
	"sponsor_politician_membership": filter.ForeignKey(1, func(u []string) ([]filter.Condition, error) {
		id, err := lastInt(u)
		if err != nil {
			return nil, err
		}
		return []filter.Condition{{Field: "sponsor_member", Op: filter.Exact, Value: id}}, nil
	}, "e.g. /politicians/roles/326/"),
})

// lastInt parses the final path segment as an ID
func lastInt(u []string) (int64, error) {
	id, err := strconv.ParseInt(u[len(u)-1], 10, 64)
	if err != nil {
		return 0, errors.New("URL does not end in a numeric ID")
	}
	return id, nil
}

// BillListHandler serves /bills/
func BillListHandler(env *Env) fiber.Handler {
	view := &ListView[model.BillInSession]{
		Name:    "Bills",
		Filters: billFilters,
		Query:   env.Bills.InSession,
		Object:  billInSessionObject,
		HTML:    billIndexHTML(env),
	}
	return view.Handler(env)
}

func billIndexHTML(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		sessions, err := env.Sessions.WithBills(ctx)
		if err != nil {
			return serverError(c, env.Log, "Error loading sessions", err)
		}

		data := templates.BillIndexData{Title: "Bills & Votes", Sessions: sessions}
		if len(sessions) > 0 {
			data.Session = &sessions[0]
			if err := loadSessionBills(ctx, env, &data); err != nil {
				return serverError(c, env.Log, "Error loading bills", err)
			}
		}

		return render(c, templates.BillIndex(data))
	}
}

func loadSessionBills(ctx context.Context, env *Env, data *templates.BillIndexData) error {
	bills, err := env.Bills.Bills().Where("sessions", data.Session.ID).All(ctx)
	if err != nil {
		return err
	}
	votes, err := env.Votes.Questions().Where("session", data.Session.ID).Limit(recentVotes).All(ctx)
	if err != nil {
		return err
	}
	data.Bills = bills
	data.Votes = votes
	return nil
}

// BillSessionHandler serves /bills/{session}/
func BillSessionHandler(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vary(c)
		sessionID := c.Params("session")

		if selectRepresentation(c) == JSON {
			return c.Redirect("/bills/?"+url.Values{"session": {sessionID}}.Encode(), fiber.StatusFound)
		}

		ctx := c.UserContext()
		session, err := env.Sessions.Get(ctx, sessionID)
		if err != nil {
			return serverError(c, env.Log, "Error loading session", err)
		}
		if session == nil {
			return notFound(c, "Session")
		}

		data := templates.BillIndexData{
			Title:   "Bills for the " + session.String(),
			Session: session,
		}
		if err := loadSessionBills(ctx, env, &data); err != nil {
			return serverError(c, env.Log, "Error loading bills", err)
		}

		return render(c, templates.BillIndex(data))
	}
}

// BillDetailHandler serves /bills/{session}/{number}/
func BillDetailHandler(env *Env) fiber.Handler {
	view := &DetailView[model.BillInSession]{
		Name: "Bill",
		Get: func(c *fiber.Ctx) (*model.BillInSession, error) {
			return env.Bills.GetInSession(c.UserContext(), c.Params("session"), c.Params("number"))
		},
		Object: billInSessionDetail,
		Related: func(*model.BillInSession, fiber.Map) fiber.Map {
			return fiber.Map{"bills_url": "/bills/"}
		},
		HTML: billDetailHTML(env),
	}
	return view.Handler(env)
}

func billDetailHTML(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := assembleBillDetail(c.UserContext(), env, c.Params("session"), c.Params("number"), c.Query("page"))
		if err != nil {
			return serverError(c, env.Log, "Error loading bill", err)
		}
		if data == nil {
			return notFound(c, "Bill")
		}

		if selectRepresentation(c) == Fragment {
			return render(c, templates.StatementPage(data.Statements))
		}
		return render(c, templates.BillDetail(*data))
	}
}

// assembleBillDetail gathers everything a bill page shows. It returns nil
// when the session has no such bill.
func assembleBillDetail(ctx context.Context, env *Env, sessionID, number, page string) (*templates.BillDetailData, error) {
	bis, err := env.Bills.GetInSession(ctx, sessionID, number)
	if err != nil || bis == nil {
		return nil, err
	}

	var (
		statementPage *paginate.Page[model.Statement]
		votes         []model.VoteQuestion
		latest        *model.Session
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		statements := env.Statements.Statements().Where("bill.id", bis.BillID)
		var err error
		statementPage, err = paginate.Fetch[model.Statement](gctx, statements, statementsPerPage, page)
		return err
	})
	g.Go(func() error {
		var err error
		votes, err = env.Votes.Questions().
			Where("bill.id", bis.BillID).
			OrderBy("-date", "-number").
			All(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		latest, err = env.Sessions.Get(gctx, bis.Bill.SessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Bill %s", bis.Bill.Number)
	if latest != nil && !latest.IsCurrent() {
		title += " (Historical)"
	}

	return &templates.BillDetailData{
		Title:         title,
		Bill:          bis,
		Session:       latest,
		Statements:    statementPage,
		VoteQuestions: votes,
	}, nil
}
