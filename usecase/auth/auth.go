package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteerhub/auth-service/domain"
	"github.com/volunteerhub/auth-service/internal/security"
	"github.com/volunteerhub/auth-service/repository"
)

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	UserType domain.UserType
}

// UseCase orchestrates registration and login. All collaborators are
// passed in explicitly so tests can substitute fakes.
type UseCase struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	tokens security.TokenIssuer
	audit  repository.AuditTrail
	logger *zap.Logger
}

func New(
	users repository.UserRepository,
	hasher security.PasswordHasher,
	tokens security.TokenIssuer,
	audit repository.AuditTrail,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		audit:  audit,
		logger: logger,
	}
}

// Register creates a new active account and returns its first session
// token. An email that is already present fails with ErrEmailTaken before
// anything is written.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.AuthResult, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" || !in.UserType.IsValid() {
		return nil, domain.ErrInvalidPayload
	}

	if _, err := uc.users.GetByEmail(ctx, in.Email); err == nil {
		uc.record(ctx, domain.AuditActionRegister, domain.AuditOutcomeFailure, "email taken", in.Email, "")
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hashing password", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		UserType:     in.UserType,
		Active:       true,
	}

	if err := uc.users.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the lookup above; the
		// store's uniqueness constraint reports it here.
		if errors.Is(err, domain.ErrEmailTaken) {
			uc.record(ctx, domain.AuditActionRegister, domain.AuditOutcomeFailure, "email taken", in.Email, "")
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "issuing token", err)
	}

	uc.logger.Debug("user registered", zap.String("user_id", user.ID))
	uc.record(ctx, domain.AuditActionRegister, domain.AuditOutcomeSuccess, "", in.Email, user.ID)

	return &domain.AuthResult{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		UserType: user.UserType,
		Token:    token,
	}, nil
}

// Login verifies credentials and issues a fresh session token. Unknown
// email and wrong password both surface as ErrInvalidCredentials; the
// audit trail keeps the distinction internally.
//
// Disabled accounts are rejected before the password is checked, so a
// disabled user never receives a credential-match signal.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.record(ctx, domain.AuditActionLogin, domain.AuditOutcomeFailure, "unknown email", email, "")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive() {
		uc.record(ctx, domain.AuditActionLogin, domain.AuditOutcomeFailure, "account disabled", email, user.ID)
		return nil, domain.ErrAccountDisabled
	}

	if !uc.hasher.Verify(password, user.PasswordHash) {
		uc.record(ctx, domain.AuditActionLogin, domain.AuditOutcomeFailure, "wrong password", email, user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "issuing token", err)
	}

	uc.logger.Debug("user logged in", zap.String("user_id", user.ID))
	uc.record(ctx, domain.AuditActionLogin, domain.AuditOutcomeSuccess, "", email, user.ID)

	return &domain.AuthResult{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		UserType: user.UserType,
		Token:    token,
	}, nil
}

// record writes an audit event without ever failing the auth operation.
func (uc *UseCase) record(ctx context.Context, action, outcome, reason, email, userID string) {
	if uc.audit == nil {
		return
	}
	event := domain.AuditEvent{
		Action:    action,
		Outcome:   outcome,
		Reason:    reason,
		Email:     email,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	if err := uc.audit.Record(ctx, event); err != nil {
		uc.logger.Warn("audit record failed", zap.Error(err))
	}
}
