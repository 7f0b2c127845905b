package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tasktrack/internal/model"
	"tasktrack/internal/pkg/hasher"
	"tasktrack/internal/pkg/jwtutil"
	"tasktrack/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidPassword   = errors.New("invalid password")
)

// AuthEventPublisher delivers audit events. A nil publisher disables auditing.
type AuthEventPublisher interface {
	Publish(ctx context.Context, event model.AuthEvent) error
}

// TokenRevoker backs logout with server-side revocation. A nil revoker keeps
// the stateless behaviour: logout only clears the client's copy.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type AuthService struct {
	userRepo  *repository.UserRepository
	hasher    *hasher.Pool
	tokens    *jwtutil.Manager
	publisher AuthEventPublisher
	revoker   TokenRevoker
	logger    *slog.Logger
}

type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
	RemoteAddr      string
}

type LoginInput struct {
	Username   string
	Password   string
	RemoteAddr string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(
	userRepo *repository.UserRepository,
	hashPool *hasher.Pool,
	tokens *jwtutil.Manager,
	publisher AuthEventPublisher,
	revoker TokenRevoker,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hashPool,
		tokens:    tokens,
		publisher: publisher,
		revoker:   revoker,
		logger:    logger,
	}
}

// Register creates the user with a single insert and returns it together
// with a freshly issued token. Duplicate usernames or emails are detected by
// the store's unique indexes, so two racing registrations cannot both win.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)

	if username == "" || email == "" || firstName == "" || lastName == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	if input.ConfirmPassword != "" && input.ConfirmPassword != input.Password {
		return nil, ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		if errors.Is(err, hasher.ErrTooLong) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrDuplicateUsername
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username),
	)
	s.publish(ctx, model.AuthEvent{
		Type:       model.AuthEventRegistered,
		UserID:     user.ID,
		Username:   user.Username,
		RemoteAddr: input.RemoteAddr,
	})
	return &AuthResult{Token: token, User: user}, nil
}

// Verify checks a username and password pair. The password is compared
// exactly as given.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.hasher.Compare(ctx, user.PasswordHash, password); err != nil {
		if errors.Is(err, hasher.ErrMismatch) {
			return nil, ErrInvalidPassword
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.Verify(ctx, input.Username, input.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidPassword) {
			s.publish(ctx, model.AuthEvent{
				Type:       model.AuthEventLoginFailed,
				Username:   strings.TrimSpace(input.Username),
				Reason:     err.Error(),
				RemoteAddr: input.RemoteAddr,
			})
		}
		return nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.AuthEvent{
		Type:       model.AuthEventLogin,
		UserID:     user.ID,
		Username:   user.Username,
		RemoteAddr: input.RemoteAddr,
	})
	return &AuthResult{Token: token, User: user}, nil
}

// Logout revokes token server-side when a revoker is configured. Without
// one, or for a token that no longer verifies, it does nothing.
func (s *AuthService) Logout(ctx context.Context, token, remoteAddr string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil
	}

	if s.revoker != nil {
		if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return fmt.Errorf("revoke token failed: %w", err)
		}
	}

	s.publish(ctx, model.AuthEvent{
		Type:       model.AuthEventLogout,
		UserID:     claims.UserID,
		Username:   claims.Username,
		RemoteAddr: remoteAddr,
	})
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (string, error) {
	return s.tokens.Issue(jwtutil.Claims{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
	})
}

func (s *AuthService) publish(ctx context.Context, event model.AuthEvent) {
	if s.publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "publish auth event failed",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
	}
}
