package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"identity/config"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/infra/auth"
	"identity/internal/infra/metrics"
	"identity/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

// memoryUserRepository enforces the same unique keys as the users table.
type memoryUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		clone := *u

		return &clone, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *memoryUserRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			clone := *u

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memoryUserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return domainerrors.NewValidationError(domainerrors.FieldError{Field: "email", Reason: domainerrors.ReasonTaken})
		}
		if u.Username == user.Username {
			return domainerrors.NewValidationError(domainerrors.FieldError{Field: "username", Reason: domainerrors.ReasonTaken})
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone

	return nil
}

func (r *memoryUserRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.users)
}

type memoryTransactionManager struct {
	repo *memoryUserRepository
}

func (tm *memoryTransactionManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(tm)
}

func (tm *memoryTransactionManager) UserRepo() repository.UserRepository {
	return tm.repo
}

// newScenario wires the real hasher and token issuer over in-memory storage.
// decode returns a token's subject and lifetime.
func newScenario(t *testing.T) (*memoryUserRepository, usecase.UserUsecase, func(string) (uuid.UUID, time.Duration)) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "scenario_secret_key_for_session_tokens"
	tokenSvc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	hasher := auth.NewBcryptHasherWithCost(bcrypt.MinCost)
	repo := newMemoryUserRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	store := NewCredentialStore(CredentialStoreParams{
		TxManager: &memoryTransactionManager{repo: repo},
		UserRepo:  repo,
		Hasher:    hasher,
		Metrics:   m,
		Logger:    logger,
	})
	users := NewUserService(UserServiceParams{
		Store:    store,
		Hasher:   hasher,
		TokenSvc: tokenSvc,
		Metrics:  m,
		Logger:   logger,
	})

	decode := func(token string) (uuid.UUID, time.Duration) {
		claims, err := tokenSvc.ValidateToken(token)
		require.NoError(t, err)

		return claims.UserID, claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	}

	return repo, users, decode
}

func TestScenario_RegisterThenLogin(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, users, decode := newScenario(t)
	ctx := context.Background()

	registered, err := users.Register(ctx, &entity.RegisterUserInput{
		Username:             "ana",
		Email:                "ana@x.io",
		Password:             "pw1",
		PasswordConfirmation: "pw1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana", registered.User.Username)

	stored, err := repo.FindByEmail(ctx, "ana@x.io")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")))

	_, err = users.Register(ctx, &entity.RegisterUserInput{
		Username:             "bob",
		Email:                "ana@x.io",
		Password:             "pw2",
		PasswordConfirmation: "pw2",
	})
	var validationErr *domainerrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.True(t, validationErr.Has("email", domainerrors.ReasonTaken))
	assert.Equal(t, 1, repo.count())

	_, err = users.Login(ctx, &usecase.LoginInput{Email: "ana@x.io", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = users.Login(ctx, &usecase.LoginInput{Email: "nobody@x.io", Password: "pw1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	loggedIn, err := users.Login(ctx, &usecase.LoginInput{Email: "ana@x.io", Password: "pw1"})
	require.NoError(t, err)
	subject, ttl := decode(loggedIn.Token)
	assert.Equal(t, registered.User.ID, subject)
	assert.Equal(t, 48*time.Hour, ttl)
	assert.Equal(t, "ana", loggedIn.User.Username)

	profile, err := users.GetProfile(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.io", profile.Email)
}

func TestScenario_ConfirmationMismatchStoresNothing(t *testing.T) {
	repo, users, _ := newScenario(t)

	_, err := users.Register(context.Background(), &entity.RegisterUserInput{
		Username:             "ana",
		Email:                "ana@x.io",
		Password:             "pw1",
		PasswordConfirmation: "pw2",
	})

	var validationErr *domainerrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.True(t, validationErr.Has("passwordConfirmation", domainerrors.ReasonMismatch))
	assert.Zero(t, repo.count())
}

func TestScenario_ConcurrentRegistrationsKeepOneRecord(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, users, _ := newScenario(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := users.Register(ctx, &entity.RegisterUserInput{
				Username:             "user" + string(rune('a'+i)),
				Email:                "same@x.io",
				Password:             "pw1",
				PasswordConfirmation: "pw1",
			})

			mu.Lock()
			defer mu.Unlock()
			var validationErr *domainerrors.ValidationError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &validationErr) && validationErr.Has("email", domainerrors.ReasonTaken):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
	assert.Equal(t, 1, repo.count())
}
