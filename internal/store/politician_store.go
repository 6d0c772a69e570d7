package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/parliament/internal/model"
	"github.com/lib/pq"
)

// PoliticianStore handles lookups of politicians and their membership terms
type PoliticianStore struct {
	db *sql.DB
}

// NewPoliticianStore creates a new PoliticianStore
func NewPoliticianStore(db *sql.DB) *PoliticianStore {
	return &PoliticianStore{db: db}
}

// ResolvePolitician maps a politician slug onto its ID
func (s *PoliticianStore) ResolvePolitician(ctx context.Context, slug string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM core_politician WHERE slug = $1`, slug).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve politician %s: %w", slug, err)
	}
	return id, true, nil
}

// loadPoliticians fetches every politician in ids with a single query
func loadPoliticians(ctx context.Context, db *sql.DB, ids []int64) (map[int64]*model.Politician, error) {
	out := make(map[int64]*model.Politician, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT id, name, name_given, name_family, slug
		FROM core_politician
		WHERE id = ANY($1)
	`
	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load politicians: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Politician
		if err := rows.Scan(&p.ID, &p.Name, &p.NameGiven, &p.NameFamily, &p.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan politician: %w", err)
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}

// loadMembers fetches membership terms with their politician and party
func loadMembers(ctx context.Context, db *sql.DB, ids []int64) (map[int64]*model.Member, error) {
	out := make(map[int64]*model.Member, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT m.id, m.politician_id, m.party_id, m.riding,
		       p.id, p.name, p.name_given, p.name_family, p.slug,
		       pa.id, pa.name, pa.short_name
		FROM core_electedmember m
		INNER JOIN core_politician p ON p.id = m.politician_id
		INNER JOIN core_party pa ON pa.id = m.party_id
		WHERE m.id = ANY($1)
	`
	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m := model.Member{Politician: &model.Politician{}, Party: &model.Party{}}
		err := rows.Scan(
			&m.ID,
			&m.PoliticianID,
			&m.PartyID,
			&m.Riding,
			&m.Politician.ID,
			&m.Politician.Name,
			&m.Politician.NameGiven,
			&m.Politician.NameFamily,
			&m.Politician.Slug,
			&m.Party.ID,
			&m.Party.Name,
			&m.Party.ShortName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		out[m.ID] = &m
	}
	return out, rows.Err()
}

// uniqueIDs collects the distinct valid IDs
func uniqueIDs(ids ...sql.NullInt64) []int64 {
	seen := make(map[int64]bool, len(ids))
	var out []int64
	for _, id := range ids {
		if id.Valid && !seen[id.Int64] {
			seen[id.Int64] = true
			out = append(out, id.Int64)
		}
	}
	return out
}
