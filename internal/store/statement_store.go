package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/parliament/internal/model"
	"github.com/jjenkins/parliament/internal/query"
)

var statementSchema = &query.Schema{
	Select: `s.id, s.time, s.sequence, s.bill_debated_id, s.member_id, s.politician_id,
		s.who, s.slug, s.content_en`,
	From: "hansards_statement s",
	Columns: map[string]query.Column{
		"id":         {Expr: "s.id"},
		"time":       {Expr: "s.time"},
		"sequence":   {Expr: "s.sequence"},
		"bill.id":    {Expr: "s.bill_debated_id"},
		"member":     {Expr: "s.member_id"},
		"politician": {Expr: "s.politician_id"},
	},
}

// StatementStore handles database operations for Hansard statements
type StatementStore struct {
	db *sql.DB
}

// NewStatementStore creates a new StatementStore
func NewStatementStore(db *sql.DB) *StatementStore {
	return &StatementStore{db: db}
}

// Statements is every statement, newest first
func (s *StatementStore) Statements() query.Set[model.Statement] {
	plan := query.NewPlan().
		OrderBy("-time", "-sequence").
		Prefetch("member")
	return query.NewSet[model.Statement](statementRunner{s.db}, plan)
}

type statementRunner struct {
	db *sql.DB
}

func (r statementRunner) Count(ctx context.Context, p *query.Plan) (int, error) {
	return count(ctx, r.db, statementSchema, p)
}

func (r statementRunner) Fetch(ctx context.Context, p *query.Plan) ([]model.Statement, error) {
	q, args, err := statementSchema.Compile(p)
	if err != nil {
		return nil, err
	}

	ctx, span := startQuery(ctx, "statements", q)
	defer span.End()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get statements: %w", err)
	}
	defer rows.Close()

	var statements []model.Statement
	for rows.Next() {
		var st model.Statement
		err := rows.Scan(
			&st.ID,
			&st.Time,
			&st.Sequence,
			&st.BillID,
			&st.MemberID,
			&st.PoliticianID,
			&st.Who,
			&st.Slug,
			&st.ContentHTML,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if p.Prefetches("member") {
		ids := make([]sql.NullInt64, len(statements))
		for i := range statements {
			ids[i] = statements[i].MemberID
		}
		members, err := loadMembers(ctx, r.db, uniqueIDs(ids...))
		if err != nil {
			return nil, err
		}
		for i := range statements {
			if statements[i].MemberID.Valid {
				statements[i].Member = members[statements[i].MemberID.Int64]
			}
		}
	}

	return statements, nil
}
