package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/parliament/internal/model"
	"github.com/jjenkins/parliament/internal/query"
	"github.com/jjenkins/parliament/internal/query/querytest"
	"go.uber.org/zap"
)

func nullable(valid bool, v any) any {
	if !valid {
		return nil
	}
	return v
}

type fakeBills struct {
	bills     []model.Bill
	inSession []model.BillInSession
}

func billField(b model.Bill, field string) (any, bool) {
	switch field {
	case "id":
		return b.ID, true
	case "number":
		return b.Number, true
	case "number_only":
		return int64(b.NumberOnly), true
	case "institution":
		return b.Institution, true
	case "privatemember":
		return b.PrivateMember, true
	case "introduced":
		return nullable(b.Introduced.Valid, b.Introduced.Time), true
	case "law":
		return nullable(b.Law.Valid, b.Law.Bool), true
	case "sessions":
		return []string{b.SessionID}, true
	case "sponsor_member":
		return nullable(b.SponsorMemberID.Valid, b.SponsorMemberID.Int64), true
	}
	return nil, false
}

func billInSessionField(bis model.BillInSession, field string) (any, bool) {
	switch field {
	case "id":
		return bis.ID, true
	case "session":
		return bis.SessionID, true
	case "introduced":
		return nullable(bis.Introduced.Valid, bis.Introduced.Time), true
	case "legisinfo_id":
		return nullable(bis.LegisinfoID.Valid, bis.LegisinfoID.Int64), true
	case "sponsor_politician":
		return nullable(bis.SponsorPoliticianID.Valid, bis.SponsorPoliticianID.Int64), true
	case "sponsor_member":
		return nullable(bis.SponsorMemberID.Valid, bis.SponsorMemberID.Int64), true
	case "bill.id":
		return bis.BillID, true
	}
	if len(field) > 5 && field[:5] == "bill." && bis.Bill != nil {
		return billField(*bis.Bill, field[5:])
	}
	return nil, false
}

func (f *fakeBills) Bills() query.Set[model.Bill] {
	return querytest.NewRunner(f.bills, billField).
		Set(query.NewPlan().OrderBy("privatemember", "institution", "number_only"))
}

func (f *fakeBills) InSession() query.Set[model.BillInSession] {
	return querytest.NewRunner(f.inSession, billInSessionField).
		Set(query.NewPlan().OrderBy("-introduced", "-id"))
}

func (f *fakeBills) GetInSession(ctx context.Context, sessionID, number string) (*model.BillInSession, error) {
	return f.InSession().Where("session", sessionID).Where("bill.number", number).First(ctx)
}

func (f *fakeBills) GetByID(ctx context.Context, id int64) (*model.Bill, error) {
	for i := range f.bills {
		if f.bills[i].ID == id {
			return &f.bills[i], nil
		}
	}
	return nil, nil
}

func (f *fakeBills) Newest(ctx context.Context, limit int) ([]model.Bill, error) {
	var out []model.Bill
	for _, b := range f.bills {
		if b.Introduced.Valid {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Introduced.Time.After(out[j].Introduced.Time)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeVotes struct {
	questions  []model.VoteQuestion
	ballots    []model.MemberVote
	partyVotes []model.PartyVote
}

func voteField(v model.VoteQuestion, field string) (any, bool) {
	switch field {
	case "id":
		return v.ID, true
	case "session":
		return v.SessionID, true
	case "number":
		return int64(v.Number), true
	case "date":
		return v.Date, true
	case "result":
		return v.Result, true
	case "yea_total":
		return int64(v.YeaTotal), true
	case "nay_total":
		return int64(v.NayTotal), true
	case "paired_total":
		return int64(v.PairedTotal), true
	case "bill.id":
		return nullable(v.BillID.Valid, v.BillID.Int64), true
	case "bill.number", "bill.sessions":
		if v.Bill == nil {
			return nil, true
		}
		if field == "bill.number" {
			return v.Bill.Number, true
		}
		return []string{v.Bill.SessionID}, true
	}
	return nil, false
}

func ballotField(mv model.MemberVote, field string) (any, bool) {
	switch field {
	case "id":
		return mv.ID, true
	case "vote.id":
		return mv.VoteQuestionID, true
	case "politician":
		return mv.PoliticianID, true
	case "member":
		return mv.MemberID, true
	case "vote":
		return mv.Vote, true
	case "dissent":
		return mv.Dissent, true
	case "party.short_name":
		if mv.Member == nil || mv.Member.Party == nil {
			return nil, true
		}
		return mv.Member.Party.ShortName, true
	case "politician.name_family":
		if mv.Politician == nil {
			return nil, true
		}
		return mv.Politician.NameFamily, true
	case "vote.session", "vote.number", "vote.date":
		if mv.VoteQuestion == nil {
			return nil, true
		}
		return voteField(*mv.VoteQuestion, field[5:])
	}
	return nil, false
}

func (f *fakeVotes) Questions() query.Set[model.VoteQuestion] {
	return querytest.NewRunner(f.questions, voteField).
		Set(query.NewPlan().OrderBy("-date", "-number"))
}

func (f *fakeVotes) Get(ctx context.Context, sessionID string, number int) (*model.VoteQuestion, error) {
	return f.Questions().Where("session", sessionID).Where("number", number).First(ctx)
}

func (f *fakeVotes) GetByID(ctx context.Context, id int64) (*model.VoteQuestion, error) {
	return f.Questions().Where("id", id).First(ctx)
}

func (f *fakeVotes) Ballots() query.Set[model.MemberVote] {
	return querytest.NewRunner(f.ballots, ballotField).
		Set(query.NewPlan().OrderBy("-vote.date", "-vote.number", "id"))
}

func (f *fakeVotes) PartyVotes(ctx context.Context, voteID int64) ([]model.PartyVote, error) {
	var out []model.PartyVote
	for _, pv := range f.partyVotes {
		if pv.VoteQuestionID == voteID {
			out = append(out, pv)
		}
	}
	return out, nil
}

type fakeSessions []model.Session

func (f fakeSessions) Get(ctx context.Context, id string) (*model.Session, error) {
	for i := range f {
		if f[i].ID == id {
			return &f[i], nil
		}
	}
	return nil, nil
}

func (f fakeSessions) Current(ctx context.Context) (*model.Session, error) {
	if len(f) == 0 {
		return nil, nil
	}
	return &f[0], nil
}

func (f fakeSessions) WithBills(ctx context.Context) ([]model.Session, error) {
	return f, nil
}

type fakeStatements []model.Statement

func statementField(s model.Statement, field string) (any, bool) {
	switch field {
	case "id":
		return s.ID, true
	case "time":
		return s.Time, true
	case "sequence":
		return int64(s.Sequence), true
	case "bill.id":
		return nullable(s.BillID.Valid, s.BillID.Int64), true
	case "member":
		return nullable(s.MemberID.Valid, s.MemberID.Int64), true
	case "politician":
		return nullable(s.PoliticianID.Valid, s.PoliticianID.Int64), true
	}
	return nil, false
}

func (f fakeStatements) Statements() query.Set[model.Statement] {
	return querytest.NewRunner([]model.Statement(f), statementField).
		Set(query.NewPlan().OrderBy("-time", "-sequence"))
}

type fakePoliticians map[string]int64

func (f fakePoliticians) ResolvePolitician(ctx context.Context, slug string) (int64, bool, error) {
	id, ok := f[slug]
	return id, ok, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validTime(t time.Time) sql.NullTime { return sql.NullTime{Time: t, Valid: true} }
func validInt(n int64) sql.NullInt64     { return sql.NullInt64{Int64: n, Valid: true} }
func validBool(b bool) sql.NullBool      { return sql.NullBool{Bool: b, Valid: true} }

// fixture is a small parliament: two sessions, three bills, one bill with a
// long debate and three votes, and a vote with four ballots.
type fixture struct {
	env *Env
	app *fiber.App
}

func newFixture() *fixture {
	sessions := fakeSessions{
		{ID: "41-1", Name: "41st Parliament, 1st Session", Start: day(2011, 6, 2)},
		{ID: "40-3", Name: "40th Parliament, 3rd Session", Start: day(2010, 3, 3), End: validTime(day(2011, 3, 26))},
	}

	poilievre := &model.Politician{ID: 7, Name: "Pierre Poilievre", NameFamily: "Poilievre", Slug: "pierre-poilievre"}
	bills := []model.Bill{
		{ID: 1, Name: "Safe Streets and Communities Act", Number: "C-10", NumberOnly: 10, Institution: "C",
			SessionID: "41-1", Introduced: validTime(day(2011, 9, 20)), Law: validBool(true),
			SponsorPoliticianID: validInt(7), SponsorMemberID: validInt(326)},
		{ID: 2, Name: "Old Business Act", Number: "C-5", NumberOnly: 5, Institution: "C",
			SessionID: "40-3", Introduced: validTime(day(2009, 4, 1))},
		{ID: 3, Name: "Free Trade in Wine Act", Number: "C-311", NumberOnly: 311, Institution: "C",
			PrivateMember: true, SessionID: "41-1", Introduced: validTime(day(2011, 10, 3))},
	}
	var inSession []model.BillInSession
	for i := range bills {
		b := &bills[i]
		bis := model.BillInSession{
			ID: b.ID * 10, BillID: b.ID, SessionID: b.SessionID, Introduced: b.Introduced,
			SponsorPoliticianID: b.SponsorPoliticianID, SponsorMemberID: b.SponsorMemberID, Bill: b,
		}
		if b.SponsorPoliticianID.Valid {
			bis.SponsorPolitician = poilievre
		}
		inSession = append(inSession, bis)
	}

	var statements fakeStatements
	for i := 1; i <= 12; i++ {
		statements = append(statements, model.Statement{
			ID: int64(i), Time: day(2011, 10, i).Add(14 * time.Hour), Sequence: i,
			BillID: validInt(1), Who: "Speaker", Slug: fmt.Sprintf("statement-%d", i),
			ContentHTML: fmt.Sprintf("<p>speech %d</p>", i),
		})
	}

	cpc := &model.Party{ID: 1, Name: "Conservative", ShortName: "CPC"}
	ndp := &model.Party{ID: 2, Name: "New Democratic Party", ShortName: "NDP"}
	questions := []model.VoteQuestion{
		{ID: 100, SessionID: "41-1", Number: 10, Date: day(2011, 10, 1), BillID: validInt(1), Bill: &bills[0],
			Description: "Second reading", Result: model.ResultPassed, YeaTotal: 150, NayTotal: 130},
		{ID: 101, SessionID: "41-1", Number: 15, Date: day(2011, 12, 5), BillID: validInt(1), Bill: &bills[0],
			Description: "Third reading", Result: model.ResultPassed, YeaTotal: 157, NayTotal: 127},
		{ID: 102, SessionID: "41-1", Number: 12, Date: day(2011, 11, 2), BillID: validInt(1), Bill: &bills[0],
			Description: "Report stage", Result: model.ResultFailed, YeaTotal: 10, NayTotal: 200},
		{ID: 103, SessionID: "40-3", Number: 3, Date: day(2010, 5, 1),
			Description: "Opposition motion", Result: model.ResultTied},
	}

	members := []*model.Politician{
		poilievre,
		{ID: 8, Name: "Jack Layton", NameFamily: "Layton", Slug: "jack-layton"},
		{ID: 9, Name: "Anne Adams", NameFamily: "Adams", Slug: "anne-adams"},
		{ID: 10, Name: "Bob Brown", NameFamily: "Brown", Slug: "bob-brown"},
	}
	parties := []*model.Party{cpc, ndp, ndp, cpc}
	votes := []string{model.BallotYea, model.BallotNay, model.BallotYea, model.BallotYea}
	dissent := []bool{false, false, true, false}
	var ballots []model.MemberVote
	for i, p := range members {
		ballots = append(ballots, model.MemberVote{
			ID: int64(1000 + i), VoteQuestionID: 101, MemberID: int64(300 + i), PoliticianID: p.ID,
			Vote: votes[i], Dissent: dissent[i], VoteQuestion: &questions[1],
			Member:     &model.Member{ID: int64(300 + i), PoliticianID: p.ID, Party: parties[i]},
			Politician: p,
		})
	}

	env := &Env{
		Bills: &fakeBills{bills: bills, inSession: inSession},
		Votes: &fakeVotes{
			questions: questions,
			ballots:   ballots,
			partyVotes: []model.PartyVote{
				{ID: 1, VoteQuestionID: 101, PartyID: 1, Vote: model.BallotYea, Party: cpc},
				{ID: 2, VoteQuestionID: 101, PartyID: 2, Vote: model.BallotNay, Party: ndp},
			},
		},
		Sessions:    sessions,
		Statements:  statements,
		Politicians: fakePoliticians{"pierre-poilievre": 7, "jack-layton": 8},
		SiteURL:     "https://openparliament.ca",
		Log:         zap.NewNop(),
	}

	app := fiber.New()
	Register(app, env)
	return &fixture{env: env, app: app}
}
