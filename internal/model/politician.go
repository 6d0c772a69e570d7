package model

import "fmt"

// Politician is the lifetime identity of a legislator
type Politician struct {
	ID         int64
	Name       string
	NameGiven  string
	NameFamily string
	Slug       string
}

// URL returns the canonical politician page
func (p *Politician) URL() string {
	if p.Slug != "" {
		return fmt.Sprintf("/politicians/%s/", p.Slug)
	}
	return fmt.Sprintf("/politicians/%d/", p.ID)
}

// Party is a political party
type Party struct {
	ID        int64
	Name      string
	ShortName string
}

// Member is one membership term: a politician holding a seat for a party
type Member struct {
	ID           int64
	PoliticianID int64
	PartyID      int64
	Riding       string

	Politician *Politician
	Party      *Party
}

// MembershipURL returns the canonical URL of a membership term
func MembershipURL(id int64) string {
	return fmt.Sprintf("/politicians/roles/%d/", id)
}
