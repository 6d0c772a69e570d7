package model

import (
	"database/sql"
	"time"
)

// Session is a contiguous sitting period of the legislature, e.g. "41-1"
type Session struct {
	ID    string
	Name  string
	Start time.Time
	End   sql.NullTime
}

// IsCurrent reports whether the session is still sitting
func (s *Session) IsCurrent() bool {
	return !s.End.Valid
}

func (s *Session) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
