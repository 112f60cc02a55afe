package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "identity/internal/delivery/context"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/domain/service"
	"identity/internal/infra/metrics"
	"identity/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// loginState is a step of the login flow.
type loginState int

const (
	loginAwaitingLookup loginState = iota
	loginAwaitingVerification
	loginIssued
	loginRejected
	loginFailed
)

func (s loginState) String() string {
	switch s {
	case loginAwaitingLookup:
		return "awaiting_lookup"
	case loginAwaitingVerification:
		return "awaiting_verification"
	case loginIssued:
		return "issued"
	case loginRejected:
		return "rejected"
	case loginFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s loginState) terminal() bool {
	return s == loginIssued || s == loginRejected || s == loginFailed
}

// decoyPassword is hashed once and compared against when the email is unknown,
// so that path costs the same bcrypt work as a wrong password.
const decoyPassword = "identity-login-decoy"

// loginAttempt carries what each step of the flow has learned so far.
type loginAttempt struct {
	input *usecase.LoginInput
	user  *entity.User
	token string
	err   error
}

// userService implements the UserUsecase interface.
type userService struct {
	store    usecase.CredentialStore
	hasher   service.PasswordHasher
	tokenSvc service.TokenService
	metrics  *metrics.Metrics
	logger   *slog.Logger

	decoyOnce sync.Once
	decoy     string
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	Store    usecase.CredentialStore
	Hasher   service.PasswordHasher
	TokenSvc service.TokenService
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		store:    params.Store,
		hasher:   params.Hasher,
		tokenSvc: params.TokenSvc,
		metrics:  params.Metrics,
		logger:   params.Logger,
	}
}

func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account. Every failure is returned to the caller.
func (srv *userService) Register(ctx context.Context, input *entity.RegisterUserInput) (*usecase.RegisterOutput, error) {
	user, err := srv.store.Create(ctx, input)
	if err != nil {
		var validationErr *domainerrors.ValidationError
		if errors.As(err, &validationErr) {
			srv.recordRegistration(metrics.OutcomeRejected)

			return nil, errors.WithStack(err)
		}

		srv.recordRegistration(metrics.OutcomeError)
		srv.log(ctx).Error("Failed to register user", slog.Any("error", err))

		return nil, errors.WithStack(err)
	}

	srv.recordRegistration(metrics.OutcomeSuccess)
	srv.log(ctx).Info("User registered", slog.Any("userID", user.ID))

	return &usecase.RegisterOutput{User: user}, nil
}

// Login walks the attempt from lookup to a terminal state. A missing user and a
// wrong password end in the same rejection.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input == nil {
		input = &usecase.LoginInput{}
	}

	attempt := &loginAttempt{input: input}
	state := loginAwaitingLookup
	for !state.terminal() {
		switch state {
		case loginAwaitingLookup:
			state = srv.lookup(ctx, attempt)
		case loginAwaitingVerification:
			state = srv.verify(ctx, attempt)
		}
	}

	srv.log(ctx).Debug("Login attempt finished", slog.String("state", state.String()))

	switch state {
	case loginIssued:
		srv.recordLogin(metrics.OutcomeSuccess)
		srv.log(ctx).Info("User logged in", slog.Any("userID", attempt.user.ID))

		return &usecase.LoginOutput{Token: attempt.token, User: attempt.user.Public()}, nil
	case loginRejected:
		srv.recordLogin(metrics.OutcomeRejected)

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	default:
		srv.recordLogin(metrics.OutcomeError)

		return nil, attempt.err
	}
}

func (srv *userService) lookup(ctx context.Context, attempt *loginAttempt) loginState {
	if attempt.input.Email == "" || attempt.input.Password == "" {
		return loginRejected
	}

	user, err := srv.store.FindByEmail(ctx, attempt.input.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Debug("Login for unknown email", slog.String("email", attempt.input.Email))
		srv.verifyDecoy(ctx, attempt.input.Password)

		return loginRejected
	}
	if err != nil {
		srv.log(ctx).Error("Failed to look up user during login", slog.Any("error", err))
		attempt.err = errors.Wrap(err, "failed to find user during login")

		return loginFailed
	}

	attempt.user = user

	return loginAwaitingVerification
}

// verifyDecoy burns one comparison at the hasher's cost. The result is ignored.
func (srv *userService) verifyDecoy(ctx context.Context, password string) {
	srv.decoyOnce.Do(func() {
		hash, err := srv.hasher.Hash(decoyPassword)
		if err != nil {
			srv.log(ctx).Warn("Failed to prepare decoy hash", slog.Any("error", err))

			return
		}
		srv.decoy = hash
	})

	if srv.decoy != "" {
		srv.hasher.Verify(password, srv.decoy)
	}
}

func (srv *userService) verify(ctx context.Context, attempt *loginAttempt) loginState {
	if !srv.hasher.Verify(attempt.input.Password, attempt.user.PasswordHash) {
		srv.log(ctx).Debug("Login password mismatch", slog.Any("userID", attempt.user.ID))

		return loginRejected
	}

	token, err := srv.tokenSvc.IssueToken(attempt.user.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("error", err))
		attempt.err = domainerrors.ErrTokenIssueFailed.WrapMessage("failed to issue token during login")

		return loginFailed
	}

	attempt.token = token

	return loginIssued
}

// GetProfile returns the public record of an authenticated user.
func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.PublicUser, error) {
	user, err := srv.store.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("user from token no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get profile")
	}

	return user, nil
}

func (srv *userService) recordRegistration(outcome string) {
	if srv.metrics != nil {
		srv.metrics.RecordRegistration(outcome)
	}
}

func (srv *userService) recordLogin(outcome string) {
	if srv.metrics != nil {
		srv.metrics.RecordLogin(outcome)
	}
}
