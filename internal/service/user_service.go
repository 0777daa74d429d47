package service

import (
	"context"
	"fmt"
	"time"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserServiceImpl implements ports.UserService.
type UserServiceImpl struct {
	userRepo ports.UserRepository
	hasher   ports.HashService
	tokens   ports.TokenService
	log      zerolog.Logger
}

// NewUserService creates a new UserServiceImpl.
func NewUserService(
	userRepo ports.UserRepository,
	hasher ports.HashService,
	tokens ports.TokenService,
	log zerolog.Logger,
) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
}

// Register creates a user with a hashed password. Duplicate emails are
// rejected up front; the unique index remains the backstop under races.
func (s *UserServiceImpl) Register(ctx context.Context, req ports.RegisterUserRequest) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.Validation("Email already registered")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password produce the same response, so the endpoint does not leak
// which emails are registered.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user by email: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &ports.LoginResult{Token: token, Expiry: expiry, User: user}, nil
}

// Get fetches a user by id.
func (s *UserServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	return user, nil
}

// Update applies a partial update. Self-service only.
func (s *UserServiceImpl) Update(ctx context.Context, callerID, id uuid.UUID, req ports.UpdateUserRequest) (*domain.User, error) {
	if callerID != id {
		return nil, apperror.ErrAuth("Cannot modify another user")
	}

	params := ports.UserUpdateParams{Name: req.Name, Email: req.Email}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
		}
		params.PasswordHash = &hash
	}

	user, err := s.userRepo.Update(ctx, id, params)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	return user, nil
}

// Delete removes a user. Self-service only.
func (s *UserServiceImpl) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if callerID != id {
		return apperror.ErrAuth("Cannot delete another user")
	}

	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("delete user: %w", err))
	}
	if !deleted {
		return apperror.ErrNotFound("User")
	}

	s.log.Info().Str("user_id", id.String()).Msg("user deleted")
	return nil
}

// List returns a page of users.
func (s *UserServiceImpl) List(ctx context.Context, page ports.Page) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, page.Offset(), page.Limit())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list users: %w", err))
	}
	return users, nil
}
