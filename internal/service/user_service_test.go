package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"doc-chat/internal/domain"
)

type mockUserRepo struct {
	byAuth  map[string]domain.User
	created []domain.User
	err     error
}

func authKey(provider, subject string) string { return provider + "|" + subject }

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, _ string) (domain.User, error) {
	return domain.User{}, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByAuth(_ context.Context, provider, subject string) (domain.User, error) {
	if user, ok := m.byAuth[authKey(provider, subject)]; ok {
		return user, nil
	}
	return domain.User{}, pgx.ErrNoRows
}

func TestResolveOAuthUserReturnsExisting(t *testing.T) {
	existing := domain.User{ID: "user-1", AuthProvider: "google", AuthSubject: "sub-1"}
	repo := &mockUserRepo{byAuth: map[string]domain.User{authKey("google", "sub-1"): existing}}
	svc := NewUserService(zap.NewNop(), repo)

	user, err := svc.ResolveOAuthUser(context.Background(), " Google ", "sub-1", "ana@example.com", "Ana")
	if err != nil {
		t.Fatalf("ResolveOAuthUser returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected existing user, got %+v", user)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no new user created")
	}
}

func TestResolveOAuthUserCreatesNew(t *testing.T) {
	repo := &mockUserRepo{byAuth: map[string]domain.User{}}
	svc := NewUserService(zap.NewNop(), repo)

	user, err := svc.ResolveOAuthUser(context.Background(), "google", "sub-2", "  ANA@Example.com ", "  Ana  ")
	if err != nil {
		t.Fatalf("ResolveOAuthUser returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.Email != "ana@example.com" || user.DisplayName != "Ana" {
		t.Fatalf("expected normalized profile, got %+v", user)
	}
	if user.AuthProvider != "google" || user.AuthSubject != "sub-2" {
		t.Fatalf("unexpected auth identity %+v", user)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected user persisted")
	}
}

func TestResolveOAuthUserRejectsInvalidIdentity(t *testing.T) {
	svc := NewUserService(zap.NewNop(), &mockUserRepo{})

	if _, err := svc.ResolveOAuthUser(context.Background(), "", "sub", "", ""); !errors.Is(err, ErrOAuthInvalid) {
		t.Fatalf("expected ErrOAuthInvalid, got %v", err)
	}
	if _, err := svc.ResolveOAuthUser(context.Background(), "google", "   ", "", ""); !errors.Is(err, ErrOAuthInvalid) {
		t.Fatalf("expected ErrOAuthInvalid, got %v", err)
	}
}

func TestResolveOAuthUserPropagatesRepoError(t *testing.T) {
	repoErr := errors.New("db down")
	repo := &mockUserRepo{byAuth: map[string]domain.User{}, err: repoErr}
	svc := NewUserService(zap.NewNop(), repo)

	if _, err := svc.ResolveOAuthUser(context.Background(), "google", "sub-1", "", ""); !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
