package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ecoChallengeAPI/internal/apperr"
	"ecoChallengeAPI/internal/session"
	"ecoChallengeAPI/internal/store"
	"ecoChallengeAPI/internal/user"
)

var ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "Invalid credentials")

const passwordCost = 10

type UserService struct {
	accounts store.AccountStore
	sessions *session.Manager
	validate *validator.Validate
	logger   *zap.Logger
}

func NewUserService(accounts store.AccountStore, sessions *session.Manager, logger *zap.Logger) *UserService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &UserService{accounts: accounts, sessions: sessions, validate: v, logger: logger}
}

// validationError turns the first failed rule into a 400 message.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.InvalidArgument("Invalid request body")
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.InvalidArgument("%s is required", fe.Field())
	case "email":
		return apperr.InvalidArgument("%s must be a valid email address", fe.Field())
	case "min":
		return apperr.InvalidArgument("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return apperr.InvalidArgument("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return apperr.InvalidArgument("%s is invalid", fe.Field())
	}
}

func (s *UserService) Signup(ctx context.Context, req *user.SignupRequest) (*user.User, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return nil, internal(s.logger, "Could not create user", fmt.Errorf("failed to hash password: %w", err))
	}

	created, err := s.accounts.CreateUser(ctx, &user.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, passOrInternal(s.logger, "Could not create user", err)
	}

	s.logger.Info("User signed up", zap.Int64("user_id", created.ID), zap.String("username", created.Username))
	return created, nil
}

// authenticate resolves an account by email and password. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *UserService) authenticate(ctx context.Context, email, password string) (*user.User, error) {
	req := user.LoginRequest{Email: strings.ToLower(strings.TrimSpace(email)), Password: password}
	if err := s.validate.Struct(&req); err != nil {
		return nil, validationError(err)
	}

	u, err := s.accounts.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, internal(s.logger, "Could not verify credentials", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Login(ctx context.Context, req *user.LoginRequest) (*user.LoginResponse, error) {
	u, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.sessions.Issue(u.ID)
	if err != nil {
		return nil, internal(s.logger, "Could not create session", err)
	}

	s.logger.Info("User logged in", zap.Int64("user_id", u.ID))
	return &user.LoginResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      u,
	}, nil
}

func (s *UserService) Logout(ctx context.Context, claims *session.Claims) error {
	if err := s.sessions.Revoke(ctx, claims); err != nil {
		return passOrInternal(s.logger, "Could not log out", err)
	}
	s.logger.Info("User logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.accounts.GetUserByID(ctx, id)
	if err != nil {
		return nil, passOrInternal(s.logger, "Could not fetch user", err)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*user.User, error) {
	users, err := s.accounts.ListUsers(ctx)
	if err != nil {
		return nil, internal(s.logger, "Could not fetch users", err)
	}
	return users, nil
}

// DeleteUser removes the account and, through the store, its progress.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.accounts.DeleteUser(ctx, id); err != nil {
		return passOrInternal(s.logger, "Could not delete user", err)
	}
	s.logger.Info("User deleted", zap.Int64("user_id", id))
	return nil
}

// DeleteWithCredentials deletes user id only when email and password
// belong to that same account.
func (s *UserService) DeleteWithCredentials(ctx context.Context, id int64, email, password string) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return err
	}
	if u.ID != id {
		return ErrInvalidCredentials
	}
	return s.DeleteUser(ctx, id)
}
