package templates

//go:generate templ generate

import (
	"github.com/jjenkins/parliament/internal/filter"
	"github.com/jjenkins/parliament/internal/model"
	"github.com/jjenkins/parliament/internal/paginate"
)

// BillIndexData backs the bills landing page and the per-session bill list
type BillIndexData struct {
	Title    string
	Session  *model.Session
	Sessions []model.Session
	Bills    []model.Bill
	Votes    []model.VoteQuestion
}

// BillDetailData backs a bill's page
type BillDetailData struct {
	Title         string
	Bill          *model.BillInSession
	Session       *model.Session
	Statements    *paginate.Page[model.Statement]
	VoteQuestions []model.VoteQuestion
}

// VoteListData backs one session's list of divisions
type VoteListData struct {
	Title   string
	Session *model.Session
	Votes   []model.VoteQuestion
}

// VoteDetailData backs a division's page
type VoteDetailData struct {
	Vote        *model.VoteQuestion
	MemberVotes []model.MemberVote
	PartiesYes  []model.Party
	PartiesNo   []model.Party
}

// APIPageData backs the browsable rendering of a JSON resource
type APIPageData struct {
	Name    string
	Notes   string // trusted HTML
	JSON    string // indented response body
	Filters []string
	Help    map[string]filter.FieldHelp
}
