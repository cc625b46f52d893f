package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"starwars/internal/auth"
	apperrors "starwars/internal/errors"
	"starwars/internal/metrics"
	"starwars/internal/model"
	"starwars/internal/repository"
)

// Tier is the privilege an operation requires.
type Tier int

const (
	// TierAuthenticated admits any verified identity.
	TierAuthenticated Tier = iota
	// TierMaster admits only the master identity.
	TierMaster
)

// AuthService issues, verifies and revokes bearer tokens.
type AuthService interface {
	// IssueMasterToken returns ok=false without error when the credentials are not the master's.
	IssueMasterToken(identifier, password string) (token string, ok bool, err error)
	IssueUserToken(ctx context.Context, identifier, password string) (string, error)
	// Login tries the master identity first and falls through to registered users.
	Login(ctx context.Context, identifier, password string) (string, error)
	Verify(ctx context.Context, token string) (*auth.Claims, error)
	Revoke(ctx context.Context, token string) error
	Authorize(claims *auth.Claims, tier Tier) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	master     auth.MasterIdentity
	userTTL    time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	master auth.MasterIdentity,
	userTTL time.Duration,
) AuthService {
	if userTTL <= 0 {
		userTTL = auth.UserTokenExpiry
	}
	if master.TTL <= 0 {
		master.TTL = auth.MasterTokenExpiry
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		master:     master,
		userTTL:    userTTL,
	}
}

func (s *authService) IssueMasterToken(identifier, password string) (string, bool, error) {
	if !s.master.Matches(identifier, password) {
		return "", false, nil
	}
	token, err := s.jwtService.GenerateToken(s.master.Claims(), s.master.TTL)
	if err != nil {
		return "", false, oops.Code("TOKEN_SIGN_FAILED").With("tier", metrics.TierMaster).Wrap(err)
	}
	return token, true, nil
}

func (s *authService) IssueUserToken(ctx context.Context, identifier, password string) (string, error) {
	user, err := s.findUser(ctx, identifier)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, s.userTTL)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").With("tier", metrics.TierUser).Wrap(err)
	}
	return token, nil
}

// findUser resolves the identifier as a username first, then as an email.
// A miss is reported as invalid credentials that still wraps ErrUserNotFound.
func (s *authService) findUser(ctx context.Context, identifier string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, identifier)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		user, err = s.userRepo.FindByEmail(ctx, identifier)
	}
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, apperrors.ErrUserNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").Wrap(err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (string, error) {
	if identifier == "" || password == "" {
		return "", fmt.Errorf("%w: identifier and password are required", apperrors.ErrValidation)
	}

	token, ok, err := s.IssueMasterToken(identifier, password)
	if err != nil {
		metrics.RecordLogin(metrics.TierMaster, metrics.OutcomeError)
		return "", err
	}
	if ok {
		metrics.RecordLogin(metrics.TierMaster, metrics.OutcomeSuccess)
		return token, nil
	}

	token, err = s.IssueUserToken(ctx, identifier, password)
	if err != nil {
		metrics.RecordLogin(metrics.TierUser, metrics.OutcomeFailure)
		return "", err
	}
	metrics.RecordLogin(metrics.TierUser, metrics.OutcomeSuccess)
	return token, nil
}

// Verify checks the blacklist before the signature, so a revoked token is
// reported as revoked even while it is still cryptographically valid.
func (s *authService) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		metrics.RecordVerification(metrics.OutcomeInvalid)
		return nil, apperrors.ErrTokenMissing
	}

	revoked, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		metrics.RecordVerification(metrics.OutcomeError)
		return nil, oops.Code("BLACKLIST_LOOKUP_FAILED").Wrap(err)
	}
	if revoked {
		metrics.RecordVerification(metrics.OutcomeRevoked)
		return nil, apperrors.ErrTokenRevoked
	}

	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			metrics.RecordVerification(metrics.OutcomeExpired)
		} else {
			metrics.RecordVerification(metrics.OutcomeInvalid)
		}
		return nil, err
	}

	metrics.RecordVerification(metrics.OutcomeSuccess)
	return claims, nil
}

// Revoke blacklists any string. The signature is not checked.
func (s *authService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.ErrTokenMissing
	}
	if err := s.blacklist.Add(ctx, token, s.jwtService.ExpiresAt(token)); err != nil {
		return oops.Code("TOKEN_REVOKE_FAILED").Wrap(err)
	}
	metrics.RecordRevocation()
	if n, err := s.blacklist.Len(ctx); err == nil {
		metrics.SetBlacklistSize(n)
	}
	return nil
}

func (s *authService) Authorize(claims *auth.Claims, tier Tier) error {
	if claims == nil {
		return apperrors.ErrTokenMissing
	}
	if tier == TierMaster && !claims.Master {
		return apperrors.ErrForbidden
	}
	return nil
}
