package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/parliament/internal/model"
)

const apiDate = "2006-01-02"

func nullDate(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return t.Time.Format(apiDate)
}

func nullInt(n sql.NullInt64) any {
	if !n.Valid {
		return nil
	}
	return n.Int64
}

func nullBool(b sql.NullBool) any {
	if !b.Valid {
		return nil
	}
	return b.Bool
}

func billInSessionObject(bis model.BillInSession) fiber.Map {
	obj := fiber.Map{
		"session":      bis.SessionID,
		"legisinfo_id": nullInt(bis.LegisinfoID),
		"introduced":   nullDate(bis.Introduced),
		"url":          bis.URL(),
	}
	if bis.Bill != nil {
		obj["name"] = fiber.Map{"en": bis.Bill.Name}
		obj["number"] = bis.Bill.Number
	}
	return obj
}

func billInSessionDetail(bis *model.BillInSession) fiber.Map {
	obj := billInSessionObject(*bis)
	if bis.Bill != nil {
		obj["law"] = nullBool(bis.Bill.Law)
		obj["private_member_bill"] = bis.Bill.PrivateMember
		obj["home_chamber"] = chamber(bis.Bill.Institution)
	}
	obj["sponsor_politician_url"] = nil
	if bis.SponsorPolitician != nil {
		obj["sponsor_politician_url"] = bis.SponsorPolitician.URL()
	}
	obj["sponsor_politician_membership_url"] = nil
	if bis.SponsorMemberID.Valid {
		obj["sponsor_politician_membership_url"] = model.MembershipURL(bis.SponsorMemberID.Int64)
	}
	return obj
}

func chamber(institution string) string {
	if institution == "S" {
		return "Senate"
	}
	return "House"
}

func voteObject(v model.VoteQuestion) fiber.Map {
	obj := fiber.Map{
		"session":      v.SessionID,
		"number":       v.Number,
		"date":         v.Date.Format(apiDate),
		"description":  fiber.Map{"en": v.Description},
		"result":       v.ResultLabel(),
		"yea_total":    v.YeaTotal,
		"nay_total":    v.NayTotal,
		"paired_total": v.PairedTotal,
		"bill_url":     nil,
		"url":          v.URL(),
	}
	if v.Bill != nil {
		obj["bill_url"] = model.BillURL(v.SessionID, v.Bill.Number)
	}
	return obj
}

func ballotObject(mv model.MemberVote) fiber.Map {
	obj := fiber.Map{
		"politician_membership_url": model.MembershipURL(mv.MemberID),
		"ballot":                    mv.BallotLabel(),
		"vote_url":                  nil,
		"politician_url":            nil,
	}
	if mv.VoteQuestion != nil {
		obj["vote_url"] = mv.VoteQuestion.URL()
	}
	if mv.Politician != nil {
		obj["politician_url"] = mv.Politician.URL()
	}
	return obj
}
