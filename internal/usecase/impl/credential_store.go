// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "identity/internal/delivery/context"
	requestvalidator "identity/internal/delivery/http/validator"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/domain/service"
	"identity/internal/infra/metrics"
	"identity/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// credentialStore implements the CredentialStore interface.
type credentialStore struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	hasher    service.PasswordHasher
	validate  *validator.Validate
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// CredentialStoreParams holds dependencies for the credential store, injected by Fx.
type CredentialStoreParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewCredentialStore is the constructor for credentialStore.
func NewCredentialStore(params CredentialStoreParams) usecase.CredentialStore {
	return &credentialStore{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		hasher:    params.Hasher,
		validate:  requestvalidator.NewStructValidator(),
		metrics:   params.Metrics,
		logger:    params.Logger,
	}
}

func (s *credentialStore) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// Create runs the write path in a fixed order: field checks, confirmation check,
// uniqueness check, hash, persist. Any rejection happens before hashing.
func (s *credentialStore) Create(ctx context.Context, input *entity.RegisterUserInput) (*entity.PublicUser, error) {
	if input == nil {
		input = &entity.RegisterUserInput{}
	}

	// 1. Required fields, formats and the password confirmation.
	if fields := s.checkFields(input); len(fields) > 0 {
		s.log(ctx).Debug("Registration input rejected", slog.String("email", input.Email), slog.Any("fields", fields))

		return nil, domainerrors.NewValidationError(fields...)
	}

	// 2. Uniqueness, read from primary.
	if err := s.checkUnique(ctx, input); err != nil {
		return nil, err
	}

	// 3. Hash outside any transaction; bcrypt is CPU-bound.
	hash, err := s.hash(input.Password)
	if err != nil {
		s.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	// 4. Persist. The unique indexes settle any race with a concurrent registration.
	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	s.log(ctx).Debug("User stored", slog.Any("userID", user.ID))

	return user.Public(), nil
}

// checkFields collects every structural problem with the input.
func (s *credentialStore) checkFields(input *entity.RegisterUserInput) []domainerrors.FieldError {
	var fields []domainerrors.FieldError

	if err := s.validate.Struct(input); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return []domainerrors.FieldError{{Field: "input", Reason: domainerrors.ReasonInvalid}}
		}

		for _, fe := range validationErrs {
			fields = append(fields, domainerrors.FieldError{Field: fe.Field(), Reason: reasonForTag(fe.Tag())})
		}
	}

	if len(input.Password) > entity.MaxPasswordBytes {
		fields = append(fields, domainerrors.FieldError{Field: "password", Reason: domainerrors.ReasonTooLong})
	}

	if input.Password != input.PasswordConfirmation {
		fields = append(fields, domainerrors.FieldError{Field: "passwordConfirmation", Reason: domainerrors.ReasonMismatch})
	}

	return fields
}

func reasonForTag(tag string) string {
	switch tag {
	case "required":
		return domainerrors.ReasonRequired
	case "max":
		return domainerrors.ReasonTooLong
	default:
		return domainerrors.ReasonInvalid
	}
}

// checkUnique reports every already-taken unique field as one ValidationError.
func (s *credentialStore) checkUnique(ctx context.Context, input *entity.RegisterUserInput) error {
	var conflicts []domainerrors.FieldError

	err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		taken, err := exists(userRepo.FindByUsername(ctx, input.Username))
		if err != nil {
			return errors.Wrap(err, "failed to check username")
		}
		if taken {
			conflicts = append(conflicts, domainerrors.FieldError{Field: "username", Reason: domainerrors.ReasonTaken})
		}

		taken, err = exists(userRepo.FindByEmail(ctx, input.Email))
		if err != nil {
			return errors.Wrap(err, "failed to check email")
		}
		if taken {
			conflicts = append(conflicts, domainerrors.FieldError{Field: "email", Reason: domainerrors.ReasonTaken})
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute uniqueness check transaction")
	}

	if len(conflicts) > 0 {
		s.log(ctx).Info("Registration conflicts with existing user", slog.Any("fields", conflicts))

		return domainerrors.NewValidationError(conflicts...)
	}

	return nil
}

func exists(_ *entity.User, err error) (bool, error) {
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *credentialStore) hash(password string) (string, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveHash(time.Since(start))
		}
	}()

	return s.hasher.Hash(password)
}

// FindByEmail loads the full record from primary for credential verification.
func (s *credentialStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user *entity.User

	if err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var findErr error
		user, findErr = repoFactory.UserRepo().FindByEmail(ctx, email)

		return findErr
	}); err != nil {
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return user, nil
}

// FindByID returns the public projection of the user.
func (s *credentialStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.PublicUser, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user.Public(), nil
}
