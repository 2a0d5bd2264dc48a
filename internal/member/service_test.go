package member_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/detroitcommons/commons/internal/member"
)

func newService(t *testing.T) (*member.Service, *member.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := member.NewMockRepository(ctrl)

	return member.NewService(repo), repo
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    member.CreateParams
		setupMock func(repo *member.MockRepository)
		check     func(t *testing.T, m *member.Member)
		wantErr   func(t *testing.T, err error)
	}

	tests := []testCase{
		{
			name:   "Success",
			params: member.CreateParams{Name: "  Ada ", Email: " Ada@Example.COM "},
			setupMock: func(repo *member.MockRepository) {
				repo.EXPECT().
					CreateMember(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, m *member.Member) error {
						m.ID = 1
						return nil
					})
			},
			check: func(t *testing.T, m *member.Member) {
				assert.Equal(t, "Ada", m.Name)
				assert.Equal(t, "ada@example.com", m.Email)
				assert.NotEmpty(t, m.ModificationKey)
			},
		},
		{
			name:   "EmptyName",
			params: member.CreateParams{Name: "   ", Email: "ada@example.com"},
			wantErr: func(t *testing.T, err error) {
				var validationErr *member.ValidationError

				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "name", validationErr.Field)
			},
		},
		{
			name:   "InvalidEmail",
			params: member.CreateParams{Name: "Ada", Email: "not-an-email"},
			wantErr: func(t *testing.T, err error) {
				var validationErr *member.ValidationError

				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "email", validationErr.Field)
			},
		},
		{
			name:   "DuplicateEmail",
			params: member.CreateParams{Name: "Ada", Email: "ada@example.com"},
			setupMock: func(repo *member.MockRepository) {
				repo.EXPECT().
					CreateMember(gomock.Any(), gomock.Any()).
					Return(member.ErrDuplicate)
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, member.ErrDuplicate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				tt.wantErr(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestService_Authorize(t *testing.T) {
	stored := &member.Member{ID: 7, Name: "Ada", Email: "ada@example.com", ModificationKey: "valid-key"}

	t.Run("Match", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMember(gomock.Any(), int64(7)).
			Return(stored, nil)

		got, err := svc.Authorize(context.Background(), 7, "valid-key")

		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
	})

	t.Run("Mismatch", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMember(gomock.Any(), int64(7)).
			Return(stored, nil)

		got, err := svc.Authorize(context.Background(), 7, "wrong-key")

		assert.ErrorIs(t, err, member.ErrUnauthorized)
		assert.Nil(t, got)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMember(gomock.Any(), int64(7)).
			Return(stored, nil)

		got, err := svc.Authorize(context.Background(), 7, "")

		assert.ErrorIs(t, err, member.ErrUnauthorized)
		assert.Nil(t, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMember(gomock.Any(), int64(99)).
			Return(nil, member.ErrNotFound)

		got, err := svc.Authorize(context.Background(), 99, "valid-key")

		assert.ErrorIs(t, err, member.ErrNotFound)
		assert.Nil(t, got)
	})
}

func TestService_FindOrCreate(t *testing.T) {
	existing := &member.Member{ID: 7, Name: "Ada", Email: "ada@example.com"}

	t.Run("ExistingEmail", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMemberByEmail(gomock.Any(), "ada@example.com").
			Return(existing, nil)

		got, err := svc.FindOrCreate(context.Background(), "Someone Else", " Ada@Example.com ")

		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
	})

	t.Run("NewEmailRegisters", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMemberByEmail(gomock.Any(), "new@example.com").
			Return(nil, member.ErrNotFound)
		repo.EXPECT().
			CreateMember(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m *member.Member) error {
				m.ID = 8
				return nil
			})

		got, err := svc.FindOrCreate(context.Background(), "Grace", "new@example.com")

		require.NoError(t, err)
		assert.Equal(t, int64(8), got.ID)
		assert.Equal(t, "Grace", got.Name)
		assert.NotEmpty(t, got.ModificationKey)
	})

	t.Run("MissingNameFallsBackToEmail", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMemberByEmail(gomock.Any(), "new@example.com").
			Return(nil, member.ErrNotFound)
		repo.EXPECT().
			CreateMember(gomock.Any(), gomock.Any()).
			Return(nil)

		got, err := svc.FindOrCreate(context.Background(), "  ", "new@example.com")

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Name)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		svc, _ := newService(t)

		got, err := svc.FindOrCreate(context.Background(), "Ada", "bogus")

		var validationErr *member.ValidationError

		require.ErrorAs(t, err, &validationErr)
		assert.Nil(t, got)
	})

	t.Run("LookupFailure", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMemberByEmail(gomock.Any(), "ada@example.com").
			Return(nil, errors.New("connection refused"))

		got, err := svc.FindOrCreate(context.Background(), "Ada", "ada@example.com")

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestService_Update(t *testing.T) {
	bio := "organizer"

	t.Run("Success", func(t *testing.T) {
		svc, repo := newService(t)

		stored := &member.Member{ID: 7, Name: "Ada", Email: "ada@example.com", ModificationKey: "valid-key"}

		repo.EXPECT().
			GetMember(gomock.Any(), int64(7)).
			Return(stored, nil)
		repo.EXPECT().
			UpdateMember(gomock.Any(), gomock.Any()).
			Return(nil)

		name := " Ada L. "

		got, err := svc.Update(context.Background(), 7, "valid-key", member.UpdateParams{Name: &name, Bio: &bio})

		require.NoError(t, err)
		assert.Equal(t, "Ada L.", got.Name)
		require.NotNil(t, got.Bio)
		assert.Equal(t, "organizer", *got.Bio)
	})

	t.Run("WrongKey", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMember(gomock.Any(), int64(7)).
			Return(&member.Member{ID: 7, ModificationKey: "valid-key"}, nil)

		got, err := svc.Update(context.Background(), 7, "wrong-key", member.UpdateParams{Bio: &bio})

		assert.ErrorIs(t, err, member.ErrUnauthorized)
		assert.Nil(t, got)
	})

	t.Run("BlankNameRejected", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			GetMember(gomock.Any(), int64(7)).
			Return(&member.Member{ID: 7, ModificationKey: "valid-key"}, nil)

		blank := "   "

		got, err := svc.Update(context.Background(), 7, "valid-key", member.UpdateParams{Name: &blank})

		var validationErr *member.ValidationError

		require.ErrorAs(t, err, &validationErr)
		assert.Nil(t, got)
	})
}

func TestValidEmail(t *testing.T) {
	assert.True(t, member.ValidEmail("ada@example.com"))
	assert.True(t, member.ValidEmail("a.b+c@sub.example.org"))
	assert.False(t, member.ValidEmail("ada@example"))
	assert.False(t, member.ValidEmail("@example.com"))
	assert.False(t, member.ValidEmail("ada example@example.com"))
	assert.False(t, member.ValidEmail(""))
}
