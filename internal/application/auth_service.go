package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/movie-review-api/internal/domain/entity"
	repo "github.com/oksasatya/movie-review-api/internal/domain/repository"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
)

// placeholderPasswordBytes sizes the random password given to Google-created accounts.
const placeholderPasswordBytes = 32

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, assertion, audience string) (*entity.FederatedIdentity, error)
}

type WelcomeNotifier interface {
	NotifyWelcome(ctx context.Context, email, username string, viaGoogle bool) error
}

// Service implements registration, password login, Google sign-in and
// current-user lookup. Cache and Notifier are optional.
type Service struct {
	Repo           repo.UserRepository
	Hasher         PasswordHasher
	Tokens         TokenIssuer
	Verifier       IdentityVerifier
	GoogleClientID string
	Cache          repo.UserCache
	Notifier       WelcomeNotifier
	Logger         *logrus.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewService(repo repo.UserRepository, hasher PasswordHasher, tokens TokenIssuer, verifier IdentityVerifier, googleClientID string, cache repo.UserCache, notifier WelcomeNotifier, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &Service{
		Repo:           repo,
		Hasher:         hasher,
		Tokens:         tokens,
		Verifier:       verifier,
		GoogleClientID: googleClientID,
		Cache:          cache,
		Notifier:       notifier,
		Logger:         logger,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Username string
}

// AuthResult is returned by every operation that establishes identity.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Email == "" || in.Password == "" || in.Username == "" {
		return nil, ErrMissingField
	}

	existing, err := s.Repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrDuplicateUser
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Email: in.Email, Username: in.Username, PasswordHash: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		// lost a race against a concurrent registration for the same email
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.welcome(ctx, u)

	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrMissingField
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// keep timing close to the wrong-password path
			s.Hasher.Verify(password, s.timingHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// FederatedLogin verifies a Google ID token and signs the matching user in,
// creating the account on first sign-in.
func (s *Service) FederatedLogin(ctx context.Context, credential string) (*AuthResult, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}

	if s.Verifier == nil {
		return nil, &AssertionError{Reason: ErrVerifierUnavailable}
	}
	identity, err := s.Verifier.Verify(ctx, credential, s.GoogleClientID)
	if err != nil {
		return nil, &AssertionError{Reason: err}
	}
	s.Logger.WithFields(logrus.Fields{
		"email":          helpers.MaskEmail(identity.Email),
		"email_verified": identity.EmailVerified,
	}).Debug("google identity verified")
	if !identity.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	u, err := s.Repo.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		return s.issue(u)
	case !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	u, err = s.createFederated(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *Service) createFederated(ctx context.Context, identity *entity.FederatedIdentity) (*entity.User, error) {
	placeholder, err := helpers.RandomSecret(placeholderPasswordBytes)
	if err != nil {
		return nil, fmt.Errorf("generate placeholder password: %w", err)
	}
	hash, err := s.Hasher.Hash(placeholder)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		Email:          identity.Email,
		Username:       federatedUsername(identity),
		PasswordHash:   hash,
		ProfilePicture: identity.Picture,
		IsGoogleSignIn: true,
	}
	err = s.Repo.Create(ctx, u)
	if errors.Is(err, repo.ErrDuplicateEmail) {
		// a concurrent first sign-in won; use its record
		winner, gerr := s.Repo.GetByEmail(ctx, identity.Email)
		if gerr != nil {
			return nil, fmt.Errorf("lookup user after conflict: %w", gerr)
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.Logger.WithField("user_id", u.ID).Info("google user created")
	s.welcome(ctx, u)
	return u, nil
}

// federatedUsername falls back to the email's local part when the
// assertion carries no name.
func federatedUsername(identity *entity.FederatedIdentity) string {
	if name := strings.TrimSpace(identity.Name); name != "" {
		return name
	}
	if local, _, _ := strings.Cut(identity.Email, "@"); local != "" {
		return local
	}
	return identity.Email
}

// CurrentUser resolves the identity established by the session guard.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	if s.Cache != nil {
		u, ok, err := s.Cache.Get(ctx, userID)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("user cache get failed")
		}
		if ok {
			return u, nil
		}
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("user cache set failed")
		}
	}
	return u, nil
}

func (s *Service) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) welcome(ctx context.Context, u *entity.User) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.NotifyWelcome(ctx, u.Email, u.Username, u.IsGoogleSignIn); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}

// timingHash is a throwaway digest compared against when the email is unknown.
func (s *Service) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash("timing-equalizer")
	})
	return s.dummyHash
}
