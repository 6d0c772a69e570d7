package handlers

import (
	"context"

	"github.com/jjenkins/parliament/internal/filter"
	"github.com/jjenkins/parliament/internal/model"
	"github.com/jjenkins/parliament/internal/query"
	"go.uber.org/zap"
)

// BillRepository is the read access the bill pages need
type BillRepository interface {
	Bills() query.Set[model.Bill]
	InSession() query.Set[model.BillInSession]
	GetInSession(ctx context.Context, sessionID, number string) (*model.BillInSession, error)
	GetByID(ctx context.Context, id int64) (*model.Bill, error)
	Newest(ctx context.Context, limit int) ([]model.Bill, error)
}

// VoteRepository is the read access the vote pages need
type VoteRepository interface {
	Questions() query.Set[model.VoteQuestion]
	Get(ctx context.Context, sessionID string, number int) (*model.VoteQuestion, error)
	GetByID(ctx context.Context, id int64) (*model.VoteQuestion, error)
	Ballots() query.Set[model.MemberVote]
	PartyVotes(ctx context.Context, voteID int64) ([]model.PartyVote, error)
}

// SessionRepository looks up sittings of the legislature
type SessionRepository interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Current(ctx context.Context) (*model.Session, error)
	WithBills(ctx context.Context) ([]model.Session, error)
}

// StatementRepository exposes Hansard statements
type StatementRepository interface {
	Statements() query.Set[model.Statement]
}

// Env carries the dependencies shared by every handler. It holds no
// per-request state.
type Env struct {
	Bills       BillRepository
	Votes       VoteRepository
	Sessions    SessionRepository
	Statements  StatementRepository
	Politicians filter.Resolver
	SiteURL     string
	Log         *zap.Logger
}
