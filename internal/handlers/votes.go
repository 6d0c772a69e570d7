package handlers

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/parliament/internal/filter"
	"github.com/jjenkins/parliament/internal/model"
	"github.com/jjenkins/parliament/internal/templates"
)

const voteNotes = `<p>What we call votes are <b>divisions</b> in official Parliamentary lingo.
We refer to an individual person's vote as a <a href="/votes/ballots/">ballot</a>.</p>`

func filterChoices(choices []model.Choice) []filter.Choice {
	out := make([]filter.Choice, len(choices))
	for i, c := range choices {
		out[i] = filter.Choice{Code: c.Code, Label: c.Label}
	}
	return out
}

var voteFilters = filter.NewRegistry(map[string]filter.Descriptor{
	"session": filter.Field("session", filter.KindText, "e.g. 41-1"),
	"yea_total": filter.Field("yea_total", filter.KindInt,
		"# votes for", filter.NumericOperators...),
	"nay_total": filter.Field("nay_total", filter.KindInt,
		"# votes against, e.g. nay_total__gt=10", filter.NumericOperators...),
	"paired_total": filter.Field("paired_total", filter.KindInt,
		"paired votes are an odd convention that seem to have stopped in 2011", filter.NumericOperators...),
	"date": filter.Field("date", filter.KindDate,
		"date__gte=2011-01-01", filter.NumericOperators...),
	"number": filter.Field("number", filter.KindInt,
		"every vote in a session has a sequential number", filter.NumericOperators...),
	"bill": filter.ForeignKey(2, func(u []string) ([]filter.Condition, error) {
		return []filter.Condition{
			{Field: "bill.sessions", Op: filter.Exact, Value: u[len(u)-2]},
			{Field: "bill.number", Op: filter.Exact, Value: u[len(u)-1]},
		}, nil
	}, "e.g. /bills/41-1/C-10/"),
	"result": filter.Choices("result", filterChoices(model.ResultChoices)),
})

var ballotFilters = filter.NewRegistry(map[string]filter.Descriptor{
	"vote": filter.ForeignKey(2, func(u []string) ([]filter.Condition, error) {
		number, err := strconv.Atoi(u[len(u)-1])
		if err != nil {
			return nil, errors.New("URL does not end in a vote number")
		}
		return []filter.Condition{
			{Field: "vote.session", Op: filter.Exact, Value: u[len(u)-2]},
			{Field: "vote.number", Op: filter.Exact, Value: int64(number)},
		}, nil
	}, "e.g. /votes/41-1/472/"),
	"politician": filter.Politician("politician"),
	"politician_membership": filter.ForeignKey(1, func(u []string) ([]filter.Condition, error) {
		id, err := lastInt(u)
		if err != nil {
			return nil, err
		}
		return []filter.Condition{{Field: "member", Op: filter.Exact, Value: id}}, nil
	}, "e.g. /politicians/roles/326/"),
	"ballot": filter.Choices("vote", filterChoices(model.BallotChoices)),
	"dissent": filter.Field("dissent", filter.KindBool,
		"does this look like a vote against party line? not reliable for research. True, False"),
})

// VoteListHandler serves /votes/
func VoteListHandler(env *Env) fiber.Handler {
	view := &ListView[model.VoteQuestion]{
		Name:    "Votes",
		Notes:   voteNotes,
		Filters: voteFilters,
		Query:   env.Votes.Questions,
		Object:  voteObject,
		HTML:    voteListHTML(env),
	}
	return view.Handler(env)
}

// VoteSessionHandler serves /votes/{session}/. Structured clients are sent
// to the filtered list instead.
func VoteSessionHandler(env *Env) fiber.Handler {
	html := voteListHTML(env)
	return func(c *fiber.Ctx) error {
		vary(c)
		if selectRepresentation(c) == JSON {
			return c.Redirect("/votes/?"+url.Values{"session": {c.Params("session")}}.Encode(), fiber.StatusFound)
		}
		return html(c)
	}
}

func voteListHTML(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var session *model.Session
		var err error
		if id := c.Params("session"); id != "" {
			session, err = env.Sessions.Get(ctx, id)
		} else {
			session, err = env.Sessions.Current(ctx)
		}
		if err != nil {
			return serverError(c, env.Log, "Error loading session", err)
		}
		if session == nil {
			return notFound(c, "Session")
		}

		votes, err := env.Votes.Questions().Where("session", session.ID).All(ctx)
		if err != nil {
			return serverError(c, env.Log, "Error loading votes", err)
		}

		return render(c, templates.VoteList(templates.VoteListData{
			Title:   "Votes for the " + session.String(),
			Session: session,
			Votes:   votes,
		}))
	}
}

// VoteDetailHandler serves /votes/{session}/{number}/
func VoteDetailHandler(env *Env) fiber.Handler {
	view := &DetailView[model.VoteQuestion]{
		Name:  "Vote",
		Notes: voteNotes,
		Get: func(c *fiber.Ctx) (*model.VoteQuestion, error) {
			number, err := strconv.Atoi(c.Params("number"))
			if err != nil {
				return nil, nil
			}
			return env.Votes.Get(c.UserContext(), c.Params("session"), number)
		},
		Object: func(v *model.VoteQuestion) fiber.Map { return voteObject(*v) },
		Related: func(v *model.VoteQuestion, dict fiber.Map) fiber.Map {
			return fiber.Map{
				"ballots_url": "/votes/ballots/?" + url.Values{"vote": {v.URL()}}.Encode(),
				"votes_url":   "/votes/",
			}
		},
		HTML: voteDetailHTML(env),
	}
	return view.Handler(env)
}

func voteDetailHTML(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		number, err := strconv.Atoi(c.Params("number"))
		if err != nil {
			return notFound(c, "Vote")
		}

		data, err := assembleVoteDetail(c.UserContext(), env, c.Params("session"), number)
		if err != nil {
			return serverError(c, env.Log, "Error loading vote", err)
		}
		if data == nil {
			return notFound(c, "Vote")
		}

		return render(c, templates.VoteDetail(*data))
	}
}

// assembleVoteDetail gathers a division with its ballots, ordered by party
// then family name, and the parties on each side. It returns nil when the
// session has no such vote.
func assembleVoteDetail(ctx context.Context, env *Env, sessionID string, number int) (*templates.VoteDetailData, error) {
	vote, err := env.Votes.Get(ctx, sessionID, number)
	if err != nil || vote == nil {
		return nil, err
	}

	ballots, err := env.Votes.Ballots().
		Where("vote.id", vote.ID).
		OrderBy("party.short_name", "politician.name_family").
		All(ctx)
	if err != nil {
		return nil, err
	}

	partyVotes, err := env.Votes.PartyVotes(ctx, vote.ID)
	if err != nil {
		return nil, err
	}

	data := &templates.VoteDetailData{Vote: vote, MemberVotes: ballots}
	for _, pv := range partyVotes {
		if pv.Party == nil {
			continue
		}
		switch pv.Vote {
		case model.BallotYea:
			data.PartiesYes = append(data.PartiesYes, *pv.Party)
		case model.BallotNay:
			data.PartiesNo = append(data.PartiesNo, *pv.Party)
		}
	}
	return data, nil
}

// BallotListHandler serves /votes/ballots/
func BallotListHandler(env *Env) fiber.Handler {
	view := &ListView[model.MemberVote]{
		Name: "Ballots",
		Notes: `<p>An individual member's vote in a division. The <code>dissent</code> flag
is a best-effort guess at votes against the party line and is not reliable for research.</p>`,
		Filters: ballotFilters,
		Query:   env.Votes.Ballots,
		Object:  ballotObject,
	}
	return view.Handler(env)
}
