package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/parliament/internal/model"
	"github.com/jjenkins/parliament/internal/query"
)

const billColumns = `b.id, b.number, b.number_only, b.name, b.institution, b.privatemember,
	b.introduced, b.session_id, b.sponsor_politician_id, b.sponsor_member_id,
	b.legisinfo_id, b.law, b.added`

func billFields(b *model.Bill) []any {
	return []any{
		&b.ID,
		&b.Number,
		&b.NumberOnly,
		&b.Name,
		&b.Institution,
		&b.PrivateMember,
		&b.Introduced,
		&b.SessionID,
		&b.SponsorPoliticianID,
		&b.SponsorMemberID,
		&b.LegisinfoID,
		&b.Law,
		&b.AddedAt,
	}
}

var billSchema = &query.Schema{
	Select: billColumns,
	From:   "bills_bill b",
	Columns: map[string]query.Column{
		"id":             {Expr: "b.id"},
		"number":         {Expr: "b.number"},
		"number_only":    {Expr: "b.number_only"},
		"institution":    {Expr: "b.institution"},
		"privatemember":  {Expr: "b.privatemember"},
		"introduced":     {Expr: "b.introduced"},
		"law":            {Expr: "b.law"},
		"sessions":       {Expr: "EXISTS (SELECT 1 FROM bills_billinsession x WHERE x.bill_id = b.id AND x.session_id %s)"},
		"sponsor_member": {Expr: "b.sponsor_member_id"},
	},
}

var billInSessionSchema = &query.Schema{
	Select: `bis.id, bis.bill_id, bis.session_id, bis.introduced, bis.legisinfo_id,
		bis.sponsor_politician_id, bis.sponsor_member_id, ` + billColumns,
	From: "bills_billinsession bis INNER JOIN bills_bill b ON b.id = bis.bill_id",
	Columns: map[string]query.Column{
		"id":                 {Expr: "bis.id"},
		"session":            {Expr: "bis.session_id"},
		"introduced":         {Expr: "bis.introduced"},
		"legisinfo_id":       {Expr: "bis.legisinfo_id"},
		"sponsor_politician": {Expr: "bis.sponsor_politician_id"},
		"sponsor_member":     {Expr: "bis.sponsor_member_id"},
		"bill.id":            {Expr: "b.id"},
		"bill.number":        {Expr: "b.number"},
		"bill.number_only":   {Expr: "b.number_only"},
		"bill.law":           {Expr: "b.law"},
		"bill.privatemember": {Expr: "b.privatemember"},
	},
}

// BillStore handles database operations for bills
type BillStore struct {
	db *sql.DB
}

// NewBillStore creates a new BillStore
func NewBillStore(db *sql.DB) *BillStore {
	return &BillStore{db: db}
}

// Bills is every bill, in number order
func (s *BillStore) Bills() query.Set[model.Bill] {
	plan := query.NewPlan().
		OrderBy("privatemember", "institution", "number_only").
		Prefetch("sponsor_politician")
	return query.NewSet[model.Bill](billRunner{s.db}, plan)
}

// InSession is every bill-in-session association, newest introduction first
func (s *BillStore) InSession() query.Set[model.BillInSession] {
	plan := query.NewPlan().
		OrderBy("-introduced", "-id").
		Prefetch("sponsor_politician")
	return query.NewSet[model.BillInSession](billInSessionRunner{s.db}, plan)
}

// GetInSession retrieves a bill by session and number, or nil if absent
func (s *BillStore) GetInSession(ctx context.Context, sessionID, number string) (*model.BillInSession, error) {
	bis, err := s.InSession().
		Where("session", sessionID).
		Where("bill.number", number).
		First(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill %s in session %s: %w", number, sessionID, err)
	}
	return bis, nil
}

// GetByID retrieves a bill by its surrogate key
func (s *BillStore) GetByID(ctx context.Context, id int64) (*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills_bill b WHERE b.id = $1`

	var b model.Bill
	err := s.db.QueryRowContext(ctx, query, id).Scan(billFields(&b)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill %d: %w", id, err)
	}

	return &b, nil
}

// Newest retrieves the most recently introduced bills
func (s *BillStore) Newest(ctx context.Context, limit int) ([]model.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills_bill b
		WHERE b.introduced IS NOT NULL
		ORDER BY b.introduced DESC, b.number_only, b.id
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get newest bills: %w", err)
	}
	defer rows.Close()

	var bills []model.Bill
	for rows.Next() {
		var b model.Bill
		if err := rows.Scan(billFields(&b)...); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}

	return bills, rows.Err()
}

type billRunner struct {
	db *sql.DB
}

func (r billRunner) Count(ctx context.Context, p *query.Plan) (int, error) {
	return count(ctx, r.db, billSchema, p)
}

func (r billRunner) Fetch(ctx context.Context, p *query.Plan) ([]model.Bill, error) {
	q, args, err := billSchema.Compile(p)
	if err != nil {
		return nil, err
	}

	ctx, span := startQuery(ctx, "bills", q)
	defer span.End()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills: %w", err)
	}
	defer rows.Close()

	var bills []model.Bill
	for rows.Next() {
		var b model.Bill
		if err := rows.Scan(billFields(&b)...); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if p.Prefetches("sponsor_politician") {
		ids := make([]sql.NullInt64, len(bills))
		for i := range bills {
			ids[i] = bills[i].SponsorPoliticianID
		}
		politicians, err := loadPoliticians(ctx, r.db, uniqueIDs(ids...))
		if err != nil {
			return nil, err
		}
		for i := range bills {
			if bills[i].SponsorPoliticianID.Valid {
				bills[i].SponsorPolitician = politicians[bills[i].SponsorPoliticianID.Int64]
			}
		}
	}

	return bills, nil
}

type billInSessionRunner struct {
	db *sql.DB
}

func (r billInSessionRunner) Count(ctx context.Context, p *query.Plan) (int, error) {
	return count(ctx, r.db, billInSessionSchema, p)
}

func (r billInSessionRunner) Fetch(ctx context.Context, p *query.Plan) ([]model.BillInSession, error) {
	q, args, err := billInSessionSchema.Compile(p)
	if err != nil {
		return nil, err
	}

	ctx, span := startQuery(ctx, "bills_in_session", q)
	defer span.End()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills in session: %w", err)
	}
	defer rows.Close()

	var out []model.BillInSession
	for rows.Next() {
		bis := model.BillInSession{Bill: &model.Bill{}}
		dest := []any{
			&bis.ID,
			&bis.BillID,
			&bis.SessionID,
			&bis.Introduced,
			&bis.LegisinfoID,
			&bis.SponsorPoliticianID,
			&bis.SponsorMemberID,
		}
		if err := rows.Scan(append(dest, billFields(bis.Bill)...)...); err != nil {
			return nil, fmt.Errorf("failed to scan bill in session: %w", err)
		}
		out = append(out, bis)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if p.Prefetches("sponsor_politician") {
		ids := make([]sql.NullInt64, len(out))
		for i := range out {
			ids[i] = out[i].SponsorPoliticianID
		}
		politicians, err := loadPoliticians(ctx, r.db, uniqueIDs(ids...))
		if err != nil {
			return nil, err
		}
		for i := range out {
			if out[i].SponsorPoliticianID.Valid {
				out[i].SponsorPolitician = politicians[out[i].SponsorPoliticianID.Int64]
			}
		}
	}

	return out, nil
}

// count runs the COUNT(*) form of a plan
func count(ctx context.Context, db *sql.DB, schema *query.Schema, p *query.Plan) (int, error) {
	q, args, err := schema.CompileCount(p)
	if err != nil {
		return 0, err
	}
	ctx, span := startQuery(ctx, "count", q)
	defer span.End()

	var n int
	if err := db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}
