package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"contact-agenda/internal/domains/user"
	"contact-agenda/internal/shared/form"
	"contact-agenda/pkg/logger"
	"contact-agenda/pkg/password"
)

type userService struct {
	repo   user.Repository
	hasher *password.Hasher
	policy *password.Policy
	now    func() time.Time
}

func NewUserService(repo user.Repository, hasher *password.Hasher, policy *password.Policy) user.Service {
	return &userService{
		repo:   repo,
		hasher: hasher,
		policy: policy,
		now:    time.Now,
	}
}

// Register validates f and creates an active, non-staff account.
func (s *userService) Register(ctx context.Context, f user.RegisterForm) (*user.User, error) {
	f.Normalize()
	errs := f.Validate()

	if err := s.checkUnique(ctx, errs, f.Username, f.Email, nil); err != nil {
		return nil, err
	}
	if f.Password1 != "" && !errs.Has("password2") {
		for _, msg := range s.policy.Check(f.Password1, f.Username, f.FirstName, f.LastName, f.Email) {
			errs.Add("password1", msg)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(f.Password1)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Username:     f.Username,
		PasswordHash: hash,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Email:        f.Email,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if conflict := conflictErrors(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	logger.Info("user registered", map[string]interface{}{
		"user_id":  u.ID.String(),
		"username": u.Username,
	})
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, f user.LoginForm) (*user.User, error) {
	username := strings.TrimSpace(f.Username)
	if username == "" || f.Password == "" {
		return nil, user.ErrInvalidCredentials
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !s.hasher.Verify(u.PasswordHash, f.Password) {
		return nil, user.ErrInvalidCredentials
	}
	if !u.IsActive {
		logger.Info("login refused for inactive user", map[string]interface{}{"user_id": u.ID.String()})
		return nil, fmt.Errorf("%w: %w", user.ErrInvalidCredentials, user.ErrUserInactive)
	}

	if err := s.repo.UpdateLastLogin(ctx, u.ID); err != nil {
		logger.Warn("failed to stamp last login", map[string]interface{}{
			"user_id": u.ID.String(),
			"error":   err.Error(),
		})
	}
	now := s.now()
	u.LastLogin = &now
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile overwrites the identity fields. The stored hash changes only
// when a new, matching, policy-valid password pair is submitted.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, f user.ProfileForm) (*user.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f.Normalize()
	errs := f.Validate()

	if err := s.checkUnique(ctx, errs, f.Username, f.Email, &id); err != nil {
		return nil, err
	}
	if f.ChangesPassword() && !errs.Has("password2") {
		for _, msg := range s.policy.Check(f.Password1, f.Username, f.FirstName, f.LastName, f.Email) {
			errs.Add("password1", msg)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var hash string
	if f.ChangesPassword() {
		if hash, err = s.hasher.Hash(f.Password1); err != nil {
			return nil, err
		}
	}

	u.Username = f.Username
	u.FirstName = f.FirstName
	u.LastName = f.LastName
	u.Email = f.Email

	if err := s.repo.Update(ctx, u, hash); err != nil {
		if conflict := conflictErrors(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// checkUnique adds the username and email conflicts to errs, skipping
// fields that already failed. exclude is the user being edited.
func (s *userService) checkUnique(ctx context.Context, errs form.Errors, username, email string, exclude *uuid.UUID) error {
	if !errs.Has("username") {
		taken, err := s.repo.ExistsByUsername(ctx, username, exclude)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("username", user.MsgUsernameTaken)
		}
	}
	if !errs.Has("email") {
		taken, err := s.repo.ExistsByEmail(ctx, email, exclude)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("email", user.MsgEmailTaken)
		}
	}
	return nil
}

// conflictErrors maps a unique-index conflict lost to a concurrent writer
// back onto the form field.
func conflictErrors(err error) error {
	switch {
	case errors.Is(err, user.ErrEmailAlreadyExists):
		return form.Errors{"email": {user.MsgEmailTaken}}
	case errors.Is(err, user.ErrUsernameAlreadyExists):
		return form.Errors{"username": {user.MsgUsernameTaken}}
	}
	return nil
}
