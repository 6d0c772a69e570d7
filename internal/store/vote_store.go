package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/parliament/internal/model"
	"github.com/jjenkins/parliament/internal/query"
	"github.com/lib/pq"
)

const voteColumns = `vq.id, vq.session_id, vq.number, vq.date, vq.bill_id, vq.description,
	vq.result, vq.yea_total, vq.nay_total, vq.paired_total`

func voteFields(v *model.VoteQuestion) []any {
	return []any{
		&v.ID,
		&v.SessionID,
		&v.Number,
		&v.Date,
		&v.BillID,
		&v.Description,
		&v.Result,
		&v.YeaTotal,
		&v.NayTotal,
		&v.PairedTotal,
	}
}

var voteSchema = &query.Schema{
	Select: voteColumns,
	From:   "bills_votequestion vq",
	Joins: []query.Join{
		{Name: "bill", Clause: "LEFT JOIN bills_bill b ON b.id = vq.bill_id"},
	},
	Columns: map[string]query.Column{
		"id":            {Expr: "vq.id"},
		"session":       {Expr: "vq.session_id"},
		"number":        {Expr: "vq.number"},
		"date":          {Expr: "vq.date"},
		"result":        {Expr: "vq.result"},
		"yea_total":     {Expr: "vq.yea_total"},
		"nay_total":     {Expr: "vq.nay_total"},
		"paired_total":  {Expr: "vq.paired_total"},
		"bill.id":       {Expr: "vq.bill_id"},
		"bill.number":   {Expr: "b.number", Join: "bill"},
		"bill.sessions": {Expr: "EXISTS (SELECT 1 FROM bills_billinsession x WHERE x.bill_id = vq.bill_id AND x.session_id %s)"},
	},
}

var ballotSchema = &query.Schema{
	Select: `mv.id, mv.votequestion_id, mv.member_id, mv.politician_id, mv.vote, mv.dissent, ` + voteColumns,
	From:   "bills_membervote mv INNER JOIN bills_votequestion vq ON vq.id = mv.votequestion_id",
	Joins: []query.Join{
		{Name: "member", Clause: "LEFT JOIN core_electedmember m ON m.id = mv.member_id LEFT JOIN core_party pa ON pa.id = m.party_id"},
		{Name: "politician", Clause: "LEFT JOIN core_politician p ON p.id = mv.politician_id"},
	},
	Columns: map[string]query.Column{
		"id":                     {Expr: "mv.id"},
		"vote.id":                {Expr: "mv.votequestion_id"},
		"vote.session":           {Expr: "vq.session_id"},
		"vote.number":            {Expr: "vq.number"},
		"vote.date":              {Expr: "vq.date"},
		"politician":             {Expr: "mv.politician_id"},
		"member":                 {Expr: "mv.member_id"},
		"vote":                   {Expr: "mv.vote"},
		"dissent":                {Expr: "mv.dissent"},
		"party.short_name":       {Expr: "pa.short_name", Join: "member"},
		"politician.name_family": {Expr: "p.name_family", Join: "politician"},
	},
}

// VoteStore handles database operations for divisions and ballots
type VoteStore struct {
	db *sql.DB
}

// NewVoteStore creates a new VoteStore
func NewVoteStore(db *sql.DB) *VoteStore {
	return &VoteStore{db: db}
}

// Questions is every division, newest first
func (s *VoteStore) Questions() query.Set[model.VoteQuestion] {
	plan := query.NewPlan().
		OrderBy("-date", "-number").
		Prefetch("bill")
	return query.NewSet[model.VoteQuestion](voteRunner{s.db}, plan)
}

// Get retrieves a division by session and number, or nil if absent
func (s *VoteStore) Get(ctx context.Context, sessionID string, number int) (*model.VoteQuestion, error) {
	v, err := s.Questions().
		Where("session", sessionID).
		Where("number", number).
		First(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote %s/%d: %w", sessionID, number, err)
	}
	return v, nil
}

// GetByID retrieves a division by its surrogate key
func (s *VoteStore) GetByID(ctx context.Context, id int64) (*model.VoteQuestion, error) {
	query := `SELECT ` + voteColumns + ` FROM bills_votequestion vq WHERE vq.id = $1`

	var v model.VoteQuestion
	err := s.db.QueryRowContext(ctx, query, id).Scan(voteFields(&v)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote %d: %w", id, err)
	}

	return &v, nil
}

// Ballots is every member's ballot, newest division first
func (s *VoteStore) Ballots() query.Set[model.MemberVote] {
	plan := query.NewPlan().
		OrderBy("-vote.date", "-vote.number", "id").
		Prefetch("member", "politician")
	return query.NewSet[model.MemberVote](ballotRunner{s.db}, plan)
}

// PartyVotes retrieves every party's aggregate position in a division
func (s *VoteStore) PartyVotes(ctx context.Context, voteID int64) ([]model.PartyVote, error) {
	query := `
		SELECT pv.id, pv.votequestion_id, pv.party_id, pv.vote, pv.disagreement,
		       pa.id, pa.name, pa.short_name
		FROM bills_partyvote pv
		INNER JOIN core_party pa ON pa.id = pv.party_id
		WHERE pv.votequestion_id = $1
		ORDER BY pa.short_name
	`

	rows, err := s.db.QueryContext(ctx, query, voteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get party votes for %d: %w", voteID, err)
	}
	defer rows.Close()

	var votes []model.PartyVote
	for rows.Next() {
		pv := model.PartyVote{Party: &model.Party{}}
		err := rows.Scan(
			&pv.ID,
			&pv.VoteQuestionID,
			&pv.PartyID,
			&pv.Vote,
			&pv.Disagreement,
			&pv.Party.ID,
			&pv.Party.Name,
			&pv.Party.ShortName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan party vote: %w", err)
		}
		votes = append(votes, pv)
	}

	return votes, rows.Err()
}

type voteRunner struct {
	db *sql.DB
}

func (r voteRunner) Count(ctx context.Context, p *query.Plan) (int, error) {
	return count(ctx, r.db, voteSchema, p)
}

func (r voteRunner) Fetch(ctx context.Context, p *query.Plan) ([]model.VoteQuestion, error) {
	q, args, err := voteSchema.Compile(p)
	if err != nil {
		return nil, err
	}

	ctx, span := startQuery(ctx, "votes", q)
	defer span.End()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	var votes []model.VoteQuestion
	for rows.Next() {
		var v model.VoteQuestion
		if err := rows.Scan(voteFields(&v)...); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if p.Prefetches("bill") {
		ids := make([]sql.NullInt64, len(votes))
		for i := range votes {
			ids[i] = votes[i].BillID
		}
		bills, err := loadBills(ctx, r.db, uniqueIDs(ids...))
		if err != nil {
			return nil, err
		}
		for i := range votes {
			if votes[i].BillID.Valid {
				votes[i].Bill = bills[votes[i].BillID.Int64]
			}
		}
	}

	return votes, nil
}

type ballotRunner struct {
	db *sql.DB
}

func (r ballotRunner) Count(ctx context.Context, p *query.Plan) (int, error) {
	return count(ctx, r.db, ballotSchema, p)
}

func (r ballotRunner) Fetch(ctx context.Context, p *query.Plan) ([]model.MemberVote, error) {
	q, args, err := ballotSchema.Compile(p)
	if err != nil {
		return nil, err
	}

	ctx, span := startQuery(ctx, "ballots", q)
	defer span.End()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get ballots: %w", err)
	}
	defer rows.Close()

	var ballots []model.MemberVote
	for rows.Next() {
		mv := model.MemberVote{VoteQuestion: &model.VoteQuestion{}}
		dest := []any{
			&mv.ID,
			&mv.VoteQuestionID,
			&mv.MemberID,
			&mv.PoliticianID,
			&mv.Vote,
			&mv.Dissent,
		}
		if err := rows.Scan(append(dest, voteFields(mv.VoteQuestion)...)...); err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		ballots = append(ballots, mv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if p.Prefetches("member") {
		ids := make([]sql.NullInt64, len(ballots))
		for i := range ballots {
			ids[i] = sql.NullInt64{Int64: ballots[i].MemberID, Valid: true}
		}
		members, err := loadMembers(ctx, r.db, uniqueIDs(ids...))
		if err != nil {
			return nil, err
		}
		for i := range ballots {
			ballots[i].Member = members[ballots[i].MemberID]
		}
	}
	if p.Prefetches("politician") {
		ids := make([]sql.NullInt64, len(ballots))
		for i := range ballots {
			ids[i] = sql.NullInt64{Int64: ballots[i].PoliticianID, Valid: true}
		}
		politicians, err := loadPoliticians(ctx, r.db, uniqueIDs(ids...))
		if err != nil {
			return nil, err
		}
		for i := range ballots {
			ballots[i].Politician = politicians[ballots[i].PoliticianID]
		}
	}

	return ballots, nil
}

// loadBills fetches every bill in ids with a single query
func loadBills(ctx context.Context, db *sql.DB, ids []int64) (map[int64]*model.Bill, error) {
	out := make(map[int64]*model.Bill, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + billColumns + ` FROM bills_bill b WHERE b.id = ANY($1)`
	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b model.Bill
		if err := rows.Scan(billFields(&b)...); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		out[b.ID] = &b
	}
	return out, rows.Err()
}
