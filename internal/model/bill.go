package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Bill represents a bill across every session it has appeared in
type Bill struct {
	ID                  int64
	Number              string // free text, e.g. "C-10"
	NumberOnly          int
	Name                string
	Institution         string // C (House of Commons) or S (Senate)
	PrivateMember       bool
	Introduced          sql.NullTime
	SessionID           string // most recent session the bill appeared in
	SponsorPoliticianID sql.NullInt64
	SponsorMemberID     sql.NullInt64
	LegisinfoID         sql.NullInt64
	Law                 sql.NullBool
	AddedAt             time.Time

	SponsorPolitician *Politician
}

// URL returns the canonical session+number URL of the bill
func (b *Bill) URL() string {
	return BillURL(b.SessionID, b.Number)
}

// BillURL builds the canonical URL for a bill in a session
func BillURL(sessionID, number string) string {
	return fmt.Sprintf("/bills/%s/%s/", sessionID, number)
}

// BillInSession binds a bill to one session, with the sponsor for that session
type BillInSession struct {
	ID                  int64
	BillID              int64
	SessionID           string
	Introduced          sql.NullTime
	LegisinfoID         sql.NullInt64
	SponsorPoliticianID sql.NullInt64
	SponsorMemberID     sql.NullInt64

	Bill              *Bill
	SponsorPolitician *Politician
}

// URL returns the canonical URL of the bill within this session
func (bis *BillInSession) URL() string {
	if bis.Bill == nil {
		return ""
	}
	return BillURL(bis.SessionID, bis.Bill.Number)
}
