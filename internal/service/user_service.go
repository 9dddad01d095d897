package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"doc-chat/internal/domain"
	"doc-chat/internal/repository"
)

var ErrOAuthInvalid = errors.New("oauth data invalid")

// UserService resuelve identidades verificadas por el proveedor externo. No
// maneja contraseñas: la autenticación vive fuera, acá solo se materializa el
// usuario local.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{logger: logger, users: users}
}

// ResolveOAuthUser devuelve el usuario local para (provider, subject), creándolo
// si es la primera vez que el proveedor lo presenta.
func (s *UserService) ResolveOAuthUser(ctx context.Context, provider, subject, email, displayName string) (domain.User, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	subject = strings.TrimSpace(subject)
	if provider == "" || subject == "" {
		return domain.User{}, ErrOAuthInvalid
	}

	user, err := s.users.GetByAuth(ctx, provider, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	user = domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		DisplayName:  strings.TrimSpace(displayName),
		AuthProvider: provider,
		AuthSubject:  subject,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user created from oauth", zap.String("user_id", user.ID), zap.String("provider", provider))
	return user, nil
}
