package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/movie-review-api/internal/domain/entity"
	"github.com/oksasatya/movie-review-api/internal/testutil"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
)

const testClientID = "client-123.apps.googleusercontent.com"

type fakeVerifier struct {
	identity *entity.FederatedIdentity
	err      error

	gotAudience string
}

func (f *fakeVerifier) Verify(_ context.Context, _ string, audience string) (*entity.FederatedIdentity, error) {
	f.gotAudience = audience
	if f.err != nil {
		return nil, f.err
	}
	id := *f.identity
	return &id, nil
}

type welcomeCall struct {
	email, username string
	viaGoogle       bool
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []welcomeCall
	err   error
}

func (f *fakeNotifier) NotifyWelcome(_ context.Context, email, username string, viaGoogle bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, welcomeCall{email, username, viaGoogle})
	return f.err
}

type fakeCache struct {
	users  map[string]entity.User
	getErr error
	sets   int
}

func (f *fakeCache) Get(_ context.Context, id string) (*entity.User, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (f *fakeCache) Set(_ context.Context, u *entity.User) error {
	f.users[u.ID] = *u
	f.sets++
	return nil
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("hash failed") }
func (failingHasher) Verify(string, string) bool  { return false }

type testEnv struct {
	svc      *Service
	repo     *testutil.UserRepository
	tokens   *helpers.TokenIssuer
	verifier *fakeVerifier
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:   testutil.NewUserRepository(),
		tokens: helpers.NewTokenIssuer("test-secret", 24*time.Hour),
		verifier: &fakeVerifier{identity: &entity.FederatedIdentity{
			Email:         "g@b.com",
			Name:          "Gina",
			Picture:       "https://pics/g.png",
			EmailVerified: true,
		}},
		notifier: &fakeNotifier{},
	}
	env.svc = NewService(env.repo, helpers.NewBcryptHasher(bcrypt.MinCost), env.tokens, env.verifier, testClientID, nil, env.notifier, helpers.NewNopLogger())
	return env
}

func TestRegister_ThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "pw123456", Username: "a"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "a@b.com", reg.User.Email)
	assert.NotEqual(t, "pw123456", reg.User.PasswordHash)

	login, err := env.svc.Login(ctx, "a@b.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	uid, err := env.tokens.Validate(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, uid)

	require.Len(t, env.notifier.calls, 1)
	assert.Equal(t, welcomeCall{"a@b.com", "a", false}, env.notifier.calls[0])
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	for _, in := range []RegisterInput{
		{Password: "pw", Username: "a"},
		{Email: "a@b.com", Username: "a"},
		{Email: "a@b.com", Password: "pw"},
		{},
	} {
		_, err := env.svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrMissingField)
	}
	assert.Zero(t, env.repo.Count())
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "pw123456", Username: "a"})
	require.NoError(t, err)

	_, err = env.svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "different", Username: "other"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
	assert.Equal(t, 1, env.repo.Count())
}

func TestRegister_LosesInsertRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.repo.BeforeCreate = func(u *entity.User) {
		env.repo.BeforeCreate = nil
		require.NoError(t, env.repo.Create(ctx, &entity.User{Email: u.Email, Username: "winner"}))
	}

	_, err := env.svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "pw123456", Username: "loser"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
	assert.Equal(t, 1, env.repo.Count())
}

func TestRegister_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Err = errors.New("connection refused")

	_, err := env.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "pw", Username: "a"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateUser)
	assert.NotErrorIs(t, err, ErrMissingField)
}

func TestRegister_HashFailure(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Hasher = failingHasher{}

	_, err := env.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "pw", Username: "a"})
	require.Error(t, err)
	assert.Zero(t, env.repo.Count())
}

func TestRegister_WelcomeFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("broker down")

	res, err := env.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "pw", Username: "a"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_WrongPasswordAndUnknownEmailAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "pw123456", Username: "a"})
	require.NoError(t, err)

	_, wrongPw := env.svc.Login(ctx, "a@b.com", "wrong")
	_, unknown := env.svc.Login(ctx, "nobody@b.com", "pw123456")

	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = env.svc.Login(context.Background(), "a@b.com", "")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestLogin_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Err = errors.New("timeout")

	_, err := env.svc.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_CaseSensitiveEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "pw123456", Username: "a"})
	require.NoError(t, err)

	_, err = env.svc.Login(ctx, "A@B.COM", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFederatedLogin_CreatesThenReuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.FederatedLogin(ctx, "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, testClientID, env.verifier.gotAudience)
	assert.Equal(t, "g@b.com", first.User.Email)
	assert.Equal(t, "Gina", first.User.Username)
	assert.Equal(t, "https://pics/g.png", first.User.ProfilePicture)
	assert.True(t, first.User.IsGoogleSignIn)
	assert.NotEmpty(t, first.User.PasswordHash)

	second, err := env.svc.FederatedLogin(ctx, "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, 1, env.repo.Count())

	require.Len(t, env.notifier.calls, 1)
	assert.True(t, env.notifier.calls[0].viaGoogle)
}

func TestFederatedLogin_PlaceholderPasswordCannotBeGuessed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.FederatedLogin(ctx, "google-id-token")
	require.NoError(t, err)

	_, err = env.svc.Login(ctx, "g@b.com", "")
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = env.svc.Login(ctx, "g@b.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFederatedLogin_ExistingPasswordAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.svc.Register(ctx, RegisterInput{Email: "g@b.com", Password: "pw123456", Username: "gina"})
	require.NoError(t, err)

	res, err := env.svc.FederatedLogin(ctx, "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.False(t, res.User.IsGoogleSignIn)
}

func TestFederatedLogin_MissingCredential(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.FederatedLogin(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestFederatedLogin_InvalidAssertionCarriesReason(t *testing.T) {
	env := newTestEnv(t)
	reason := errors.New("idtoken: audience provided does not match aud claim in the JWT")
	env.verifier.err = reason

	_, err := env.svc.FederatedLogin(context.Background(), "bad")
	require.ErrorIs(t, err, ErrInvalidAssertion)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, reason, ae.Reason)
	assert.ErrorIs(t, err, reason)
}

func TestFederatedLogin_EmailNotVerified(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, RegisterInput{Email: "g@b.com", Password: "pw123456", Username: "gina"})
	require.NoError(t, err)

	env.verifier.identity.EmailVerified = false
	_, err = env.svc.FederatedLogin(ctx, "google-id-token")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestFederatedLogin_ConcurrentFirstSignInReusesWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var winnerID string
	env.repo.BeforeCreate = func(u *entity.User) {
		env.repo.BeforeCreate = nil
		winner := &entity.User{Email: u.Email, Username: "Gina", IsGoogleSignIn: true}
		require.NoError(t, env.repo.Create(ctx, winner))
		winnerID = winner.ID
	}

	res, err := env.svc.FederatedLogin(ctx, "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, winnerID, res.User.ID)
	assert.Equal(t, 1, env.repo.Count())
	assert.Empty(t, env.notifier.calls)
}

func TestFederatedLogin_NamelessIdentityGetsUsername(t *testing.T) {
	env := newTestEnv(t)
	env.verifier.identity.Name = "  "

	res, err := env.svc.FederatedLogin(context.Background(), "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, "g", res.User.Username)

	stored, err := env.repo.GetByEmail(context.Background(), "g@b.com")
	require.NoError(t, err)
	assert.Equal(t, "g", stored.Username)
}

func TestFederatedUsername(t *testing.T) {
	tests := []struct {
		name, email, want string
	}{
		{"Gina", "g@b.com", "Gina"},
		{" Gina ", "g@b.com", "Gina"},
		{"", "gina.smith@b.com", "gina.smith"},
		{"", "@b.com", "@b.com"},
	}
	for _, tt := range tests {
		got := federatedUsername(&entity.FederatedIdentity{Name: tt.name, Email: tt.email})
		assert.Equal(t, tt.want, got, tt.email)
	}
}

func TestFederatedLogin_NoVerifierConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Verifier = nil

	_, err := env.svc.FederatedLogin(context.Background(), "google-id-token")
	require.ErrorIs(t, err, ErrInvalidAssertion)
	assert.ErrorIs(t, err, ErrVerifierUnavailable)
	assert.Zero(t, env.repo.Count())
}

func TestFederatedLogin_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Err = errors.New("no primary")

	_, err := env.svc.FederatedLogin(context.Background(), "google-id-token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidAssertion)
}

func TestCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "pw123456", Username: "a"})
	require.NoError(t, err)

	u, err := env.svc.CurrentUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	_, err = env.svc.CurrentUser(ctx, "000000000000000000000000")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUser_UsesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cache := &fakeCache{users: map[string]entity.User{}}
	env.svc.Cache = cache

	reg, err := env.svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "pw123456", Username: "a"})
	require.NoError(t, err)

	_, err = env.svc.CurrentUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// served from cache even when the store is down
	env.repo.Err = errors.New("down")
	u, err := env.svc.CurrentUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, u.ID)
	assert.Equal(t, 1, cache.sets)
}

func TestCurrentUser_CacheErrorFallsBackToStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.svc.Cache = &fakeCache{users: map[string]entity.User{}, getErr: errors.New("redis down")}

	reg, err := env.svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "pw123456", Username: "a"})
	require.NoError(t, err)

	u, err := env.svc.CurrentUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, u.ID)
}

func TestCurrentUser_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Err = errors.New("down")

	_, err := env.svc.CurrentUser(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}
