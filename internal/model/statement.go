package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Statement is one speech in a sitting
type Statement struct {
	ID           int64
	Time         time.Time
	Sequence     int
	BillID       sql.NullInt64
	MemberID     sql.NullInt64
	PoliticianID sql.NullInt64
	Who          string
	Slug         string
	ContentHTML  string

	Member *Member
}

// Date is the statement's time truncated to its calendar day
func (s *Statement) Date() time.Time {
	y, m, d := s.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DisplayName is the speaker's name, falling back to the recorded attribution
func (s *Statement) DisplayName() string {
	if s.Member != nil && s.Member.Politician != nil {
		return s.Member.Politician.Name
	}
	return s.Who
}

// URL returns the permalink of the statement within its debate
func (s *Statement) URL() string {
	y, m, d := s.Time.Date()
	return fmt.Sprintf("/debates/%d/%d/%d/%s/", y, int(m), d, s.Slug)
}
