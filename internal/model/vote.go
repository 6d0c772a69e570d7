package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Vote result codes
const (
	ResultPassed = "Y"
	ResultFailed = "N"
	ResultTied   = "T"
)

// Ballot codes
const (
	BallotYea    = "Y"
	BallotNay    = "N"
	BallotPaired = "P"
	BallotAbsent = "A"
)

// Choice is a stored code with its display label
type Choice struct {
	Code  string
	Label string
}

// ResultChoices are the possible outcomes of a division
var ResultChoices = []Choice{
	{ResultPassed, "Passed"},
	{ResultFailed, "Failed"},
	{ResultTied, "Tied"},
}

// BallotChoices are the possible values of one member's ballot
var BallotChoices = []Choice{
	{BallotYea, "Yes"},
	{BallotNay, "No"},
	{BallotPaired, "Paired"},
	{BallotAbsent, "Didn't vote"},
}

// Label returns the display label for code, or code itself when unknown
func Label(choices []Choice, code string) string {
	for _, c := range choices {
		if c.Code == code {
			return c.Label
		}
	}
	return code
}

// VoteQuestion is one recorded division
type VoteQuestion struct {
	ID          int64
	SessionID   string
	Number      int
	Date        time.Time
	BillID      sql.NullInt64
	Description string
	Result      string
	YeaTotal    int
	NayTotal    int
	PairedTotal int

	Bill *Bill
}

// URL returns the canonical session+number URL of the vote
func (v *VoteQuestion) URL() string {
	return VoteURL(v.SessionID, v.Number)
}

// ResultLabel returns the display form of the result, e.g. "Passed"
func (v *VoteQuestion) ResultLabel() string {
	return Label(ResultChoices, v.Result)
}

// VoteURL builds the canonical URL for a vote in a session
func VoteURL(sessionID string, number int) string {
	return fmt.Sprintf("/votes/%s/%d/", sessionID, number)
}

// MemberVote is one legislator's ballot in a division
type MemberVote struct {
	ID             int64
	VoteQuestionID int64
	MemberID       int64
	PoliticianID   int64
	Vote           string
	// Dissent is a best-effort guess that the ballot went against the party line
	Dissent bool

	VoteQuestion *VoteQuestion
	Member       *Member
	Politician   *Politician
}

// BallotLabel returns the display form of the ballot, e.g. "Yes"
func (mv *MemberVote) BallotLabel() string {
	return Label(BallotChoices, mv.Vote)
}

// PartyVote is the aggregate position of a party in a division
type PartyVote struct {
	ID             int64
	VoteQuestionID int64
	PartyID        int64
	Vote           string
	Disagreement   bool

	Party *Party
}
