package templates

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jjenkins/parliament/internal/model"
)

func longDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func billSessionURL(sessionID string) string {
	return "/bills/" + sessionID + "/"
}

func voteSessionURL(sessionID string) string {
	return "/votes/" + sessionID + "/"
}

func billType(b *model.Bill) string {
	if b.PrivateMember {
		return "Private member's bill"
	}
	return "Government bill"
}

// pageQuery links to another page of the current listing
func pageQuery(n int) string {
	return "?page=" + strconv.Itoa(n)
}

func statementAnchor(id int64) string {
	return "s" + strconv.FormatInt(id, 10)
}

func voteTitle(v *model.VoteQuestion) string {
	return fmt.Sprintf("Vote #%d on %s", v.Number, longDate(v.Date))
}

func voteCounts(v *model.VoteQuestion) string {
	return fmt.Sprintf("%d yea, %d nay, %d paired", v.YeaTotal, v.NayTotal, v.PairedTotal)
}

func operators(ops []string) string {
	return strings.Join(ops, ", ")
}
