package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/internal/auth"
	"github.com/upb/blog-platform/internal/policy"
	"github.com/upb/blog-platform/internal/validation"
	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

// Messages reported on the credential fields
const (
	MsgBadCredentials  = "These credentials do not match our records."
	MsgEmailTaken      = "The email has already been taken."
	MsgPasswordTooLong = "The password field must not be greater than 72 characters."
	defaultTokenName   = "auth_token"
	tokenTypeBearer    = "Bearer"
)

// AuthResult is returned when a token is issued
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	TokenID   uuid.UUID    `json:"-"`
}

// Identity is the authenticated principal behind a request
type Identity struct {
	Actor   *policy.Actor
	User    *models.User
	TokenID uuid.UUID
}

// AuthService registers users and issues, checks and revokes access tokens
type AuthService struct {
	users  repositories.UserRepository
	tokens repositories.TokenRepository
	txMgr  repositories.TransactionManager
	hasher *auth.PasswordHasher
	signer *auth.TokenManager
	checks
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService. auditor and recorder may be nil.
func NewAuthService(
	users repositories.UserRepository,
	tokens repositories.TokenRepository,
	txMgr repositories.TransactionManager,
	hasher *auth.PasswordHasher,
	signer *auth.TokenManager,
	validator *validation.Validator,
	auditor Auditor,
	recorder DecisionRecorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		txMgr:  txMgr,
		hasher: hasher,
		signer: signer,
		checks: newChecks(validator, auditor, recorder),
		logger: logger,
		now:    time.Now,
	}
}

// Register creates an account and signs it in
func (s *AuthService) Register(ctx context.Context, payload validation.Payload) (*AuthResult, error) {
	values, err := s.validate(ctx, validation.RegisterRules(s.users.EmailExists), payload)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(values["password"])
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			s.recorder.RecordValidationFailure(validation.RuleSetRegister)
			return nil, FieldError("password", MsgPasswordTooLong)
		}
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(values["name"], values["email"], hash)
	result, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*AuthResult, error) {
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return s.issue(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			s.recorder.RecordValidationFailure(validation.RuleSetRegister)
			return nil, FieldError("email", MsgEmailTaken)
		}
		return nil, WrapInternal("failed to register user", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	s.auditor.RecordAction(ctx, models.AuditActionUserRegistered, &user.ID, models.ResourceUser, user.ID, nil)
	return result, nil
}

// Login checks the credential pair and issues a token
func (s *AuthService) Login(ctx context.Context, payload validation.Payload) (*AuthResult, error) {
	values, err := s.validate(ctx, validation.LoginRules(), payload)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, values["email"])
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, WrapInternal("failed to load user", err)
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, values["password"]) {
		s.recorder.RecordValidationFailure(validation.RuleSetLogin)
		return nil, FieldError("email", MsgBadCredentials)
	}

	result, err := s.issue(ctx, user)
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	s.auditor.RecordAction(ctx, models.AuditActionUserLoggedIn, &user.ID, models.ResourceUser, user.ID, nil)
	return result, nil
}

// Logout revokes the token the identity authenticated with
func (s *AuthService) Logout(ctx context.Context, id *Identity) error {
	if id == nil {
		return Unauthenticated()
	}
	if err := s.tokens.Delete(ctx, id.TokenID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return WrapInternal("failed to revoke token", err)
	}

	s.logger.Info("user logged out", zap.String("user_id", id.User.ID.String()))
	s.auditor.RecordAction(ctx, models.AuditActionUserLoggedOut, &id.User.ID, models.ResourceUser, id.User.ID, nil)
	return nil
}

// Refresh revokes the current token and issues a replacement
func (s *AuthService) Refresh(ctx context.Context, id *Identity) (*AuthResult, error) {
	if id == nil {
		return nil, Unauthenticated()
	}
	result, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*AuthResult, error) {
		if err := s.tokens.Delete(ctx, id.TokenID); err != nil {
			return nil, err
		}
		return s.issue(ctx, id.User)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Unauthenticated()
		}
		return nil, WrapInternal("failed to refresh token", err)
	}
	return result, nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, actor *policy.Actor) (*models.User, error) {
	if actor.IsGuest() {
		return nil, Unauthenticated()
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Unauthenticated()
		}
		return nil, WrapInternal("failed to load user", err)
	}
	return user, nil
}

// Authenticate resolves a bearer token into an identity. The token must carry
// a valid signature, be unexpired and must not have been revoked.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*Identity, error) {
	claims, err := s.signer.Parse(raw)
	if err != nil {
		return nil, Unauthenticated()
	}

	token, err := s.tokens.GetByID(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Unauthenticated()
		}
		return nil, WrapInternal("failed to load token", err)
	}
	now := s.now()
	if token.UserID != claims.UserID || token.Expired(now) {
		return nil, Unauthenticated()
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Unauthenticated()
		}
		return nil, WrapInternal("failed to load user", err)
	}

	if err := s.tokens.Touch(ctx, token.ID, now.UTC()); err != nil {
		s.logger.Warn("failed to record token use", zap.Error(err), zap.String("token_id", token.ID.String()))
	}

	return &Identity{
		Actor:   policy.NewActor(user.ID, user.IsAdmin()),
		User:    user,
		TokenID: token.ID,
	}, nil
}

// SetAdmin grants or revokes the admin flag of the account with email
func (s *AuthService) SetAdmin(ctx context.Context, email string, admin bool) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, lookupErr(models.ResourceUser, err)
	}
	if user.Admin == admin {
		return user, nil
	}

	if err := s.users.SetAdmin(ctx, user.ID, admin); err != nil {
		return nil, WrapInternal("failed to change role", err)
	}
	user.Admin = admin

	s.logger.Info("role changed", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role())))
	s.auditor.RecordAction(ctx, models.AuditActionRoleChanged, nil, models.ResourceUser, user.ID,
		map[string]interface{}{"role": user.Role()})
	return user, nil
}

// PruneExpiredTokens deletes tokens that can no longer authenticate
func (s *AuthService) PruneExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, WrapInternal("failed to prune tokens", err)
	}
	if n > 0 {
		s.logger.Info("pruned expired tokens", zap.Int64("count", n))
	}
	return n, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	token := models.NewAccessToken(user.ID, defaultTokenName, s.signer.TTL())
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	signed, err := s.signer.Issue(user.ID, token.ID, token.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:      user,
		Token:     signed,
		TokenType: tokenTypeBearer,
		ExpiresAt: token.ExpiresAt,
		TokenID:   token.ID,
	}, nil
}
