package member

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=member
type Repository interface {
	CreateMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, id int64) (*Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*Member, error)
	UpdateMember(ctx context.Context, m *Member) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name  string
	Email string
	Bio   *string
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Member, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if !ValidEmail(email) {
		return nil, &ValidationError{Field: "email", Reason: "must look like local@domain"}
	}

	m := &Member{
		Name:            name,
		Email:           email,
		Bio:             params.Bio,
		ModificationKey: uuid.NewString(),
	}
	if err := s.repo.CreateMember(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Member, error) {
	return s.repo.GetMember(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Member, error) {
	return s.repo.GetMemberByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// FindOrCreate resolves a member by email, registering a new one when the
// address is unknown. Used by the public submission path, which carries an
// email instead of a member id.
func (s *Service) FindOrCreate(ctx context.Context, name, email string) (*Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !ValidEmail(email) {
		return nil, &ValidationError{Field: "email", Reason: "must look like local@domain"}
	}

	m, err := s.repo.GetMemberByEmail(ctx, email)
	if err == nil {
		return m, nil
	}

	if err != ErrNotFound {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = email
	}

	return s.Create(ctx, CreateParams{Name: name, Email: email})
}

// Authorize checks the caller-presented modification key against the member's
// issued key. A mismatch is an authorization failure, never a validation one.
func (s *Service) Authorize(ctx context.Context, id int64, key string) (*Member, error) {
	m, err := s.repo.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	if key == "" || m.ModificationKey != key {
		return nil, ErrUnauthorized
	}

	return m, nil
}

type UpdateParams struct {
	Name *string
	Bio  *string
}

func (s *Service) Update(ctx context.Context, id int64, key string, params UpdateParams) (*Member, error) {
	m, err := s.Authorize(ctx, id, key)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
		}

		m.Name = name
	}

	if params.Bio != nil {
		m.Bio = params.Bio
	}

	if err := s.repo.UpdateMember(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}
