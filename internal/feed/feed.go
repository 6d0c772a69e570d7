package feed

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/jjenkins/parliament/internal/model"
)

// Sizes of the bill feeds
const (
	NewestBillsLimit  = 25
	ActivityStatement = 10
	ActivityVotes     = 3
)

// Item is one entry of a feed, whatever record it came from
type Item interface {
	Date() time.Time
	Title() string
	Link() string
	Description() string
}

// VoteItem presents a division as a feed item
type VoteItem struct {
	Vote model.VoteQuestion
}

func (i VoteItem) Date() time.Time { return i.Vote.Date }

func (i VoteItem) Title() string {
	return fmt.Sprintf("Vote #%d (%s)", i.Vote.Number, i.Vote.ResultLabel())
}

func (i VoteItem) Link() string        { return i.Vote.URL() }
func (i VoteItem) Description() string { return i.Vote.Description }

// StatementItem presents a speech as a feed item
type StatementItem struct {
	Statement model.Statement
}

func (i StatementItem) Date() time.Time { return i.Statement.Date() }

func (i StatementItem) Title() string {
	party := ""
	if m := i.Statement.Member; m != nil && m.Party != nil {
		party = m.Party.ShortName + "; "
	}
	return fmt.Sprintf("%s (%s%s)", i.Statement.DisplayName(), party, LongDate(i.Statement.Time))
}

func (i StatementItem) Link() string        { return i.Statement.URL() }
func (i StatementItem) Description() string { return i.Statement.ContentHTML }

// Merge combines a bill's votes and statements into one list ordered by date,
// newest first. The sort is stable over votes-then-statements, each already
// newest first, so same-day items keep a fixed order.
func Merge(votes []model.VoteQuestion, statements []model.Statement) []Item {
	items := make([]Item, 0, len(votes)+len(statements))
	for _, v := range votes {
		items = append(items, VoteItem{Vote: v})
	}
	for _, s := range statements {
		items = append(items, StatementItem{Statement: s})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date().After(items[j].Date())
	})
	return items
}

// NewestBills builds the feed of newly introduced bills
func NewestBills(bills []model.Bill, siteURL string) *feeds.Feed {
	f := &feeds.Feed{
		Title:       "Bills in the House of Commons",
		Link:        &feeds.Link{Href: absolute(siteURL, "/bills/")},
		Description: "New bills introduced to the House, from openparliament.ca.",
	}
	for _, b := range bills {
		origin := "Government"
		if b.PrivateMember {
			origin = "Private member's"
		}
		item := &feeds.Item{
			Title:       fmt.Sprintf("Bill %s (%s)", b.Number, origin),
			Link:        &feeds.Link{Href: absolute(siteURL, b.URL())},
			Id:          absolute(siteURL, b.URL()),
			Description: b.Name,
		}
		if b.Introduced.Valid {
			item.Created = b.Introduced.Time
		}
		f.Items = append(f.Items, item)
	}
	if len(f.Items) > 0 {
		f.Created = f.Items[0].Created
	}
	return f
}

// BillActivity builds the feed of recent speeches and votes about one bill
func BillActivity(bill model.Bill, items []Item, siteURL string) *feeds.Feed {
	f := &feeds.Feed{
		Title:       fmt.Sprintf("Bill %s", bill.Number),
		Link:        &feeds.Link{Href: absolute(siteURL, bill.URL())},
		Description: fmt.Sprintf("From openparliament.ca, speeches about Bill %s, %s", bill.Number, bill.Name),
	}
	for _, it := range items {
		link := absolute(siteURL, it.Link())
		f.Items = append(f.Items, &feeds.Item{
			Title:       it.Title(),
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: it.Description(),
			Created:     it.Date(),
		})
	}
	if len(f.Items) > 0 {
		f.Created = f.Items[0].Created
	}
	return f
}

func absolute(siteURL, path string) string {
	return strings.TrimRight(siteURL, "/") + path
}

// LongDate formats t as "January 2nd"
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s %d%s", t.Month(), t.Day(), ordinal(t.Day()))
}

func ordinal(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
