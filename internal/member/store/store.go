package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/detroitcommons/commons/internal/member"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, name, email, bio, modification_key, created_at, updated_at
func scanMember(s scanner) (*member.Member, error) {
	var m member.Member

	var bio sql.NullString

	if err := s.Scan(
		&m.ID, &m.Name, &m.Email, &bio, &m.ModificationKey,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if bio.Valid {
		m.Bio = &bio.String
	}

	return &m, nil
}

const selectMemberColumns = `
	id, name, email, bio, modification_key, created_at, updated_at
`

func (s *Store) CreateMember(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (name, email, bio, modification_key, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		m.Name,
		m.Email,
		m.Bio,
		m.ModificationKey,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "members_email_key") {
			return member.ErrDuplicate
		}

		return fmt.Errorf("creating member: %w", err)
	}

	return nil
}

func (s *Store) GetMember(ctx context.Context, id int64) (*member.Member, error) {
	query := `SELECT ` + selectMemberColumns + ` FROM members WHERE id = $1`

	m, err := scanMember(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, member.ErrNotFound
		}

		return nil, fmt.Errorf("getting member: %w", err)
	}

	return m, nil
}

func (s *Store) GetMemberByEmail(ctx context.Context, email string) (*member.Member, error) {
	query := `SELECT ` + selectMemberColumns + ` FROM members WHERE email = $1`

	m, err := scanMember(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, member.ErrNotFound
		}

		return nil, fmt.Errorf("getting member by email: %w", err)
	}

	return m, nil
}

func (s *Store) UpdateMember(ctx context.Context, m *member.Member) error {
	query := `
		UPDATE members
		SET name = $1, bio = $2, updated_at = NOW()
		WHERE id = $3
	`

	_, err := s.db.ExecContext(ctx, query, m.Name, m.Bio, m.ID)
	if err != nil {
		return fmt.Errorf("updating member: %w", err)
	}

	return nil
}
