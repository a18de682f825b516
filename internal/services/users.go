package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/store"
	"github.com/Emma781227/Ble-dor/validation"
)

// Password bounds apply to registration, manager accounts and resets.
// bcrypt only accepts up to 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

type RegisterInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	MarketingOptIn bool   `json:"marketing_opt_in"`
}

// ManagerUpdate is a partial update; nil fields are left unchanged.
type ManagerUpdate struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

type ProfileUpdate struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	MarketingOptIn bool   `json:"marketing_opt_in"`
}

type UserService struct {
	users    UserRepository
	gate     Authorizer
	sessions SessionInvalidator
	cost     int
	log      *zap.Logger
}

// NewUserService takes an optional sessions invalidator to refresh cached
// roles after manager accounts change.
func NewUserService(users UserRepository, sessions SessionInvalidator, log *zap.Logger) *UserService {
	return &UserService{users: users, gate: policy.NewActorGate(), sessions: sessions, cost: bcrypt.DefaultCost, log: log}
}

// WithBcryptCost lowers the hashing cost, for tests.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// checkPassword records a "password" violation for lengths bcrypt or the
// account rules reject.
func checkPassword(password string, v validation.Violations) {
	validation.MinLength("password", password, MinPasswordLength, v)
	if _, ok := v["password"]; !ok {
		validation.MaxBytes("password", password, MaxPasswordBytes, v)
	}
}

// Register creates a CLIENT account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.createUser(ctx, in, models.RoleClient)
}

func (s *UserService) createUser(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.Required("password", in.Password, v)
	if _, ok := v["password"]; !ok {
		checkPassword(in.Password, v)
	}
	if !v.Empty() {
		return nil, invalid(v)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:          email,
		PasswordHash:   hash,
		Name:           strings.TrimSpace(in.Name),
		Phone:          strings.TrimSpace(in.Phone),
		Role:           role,
		MarketingOptIn: in.MarketingOptIn,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storageErr("create user", err)
	}
	s.log.Info("user created", zap.String("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

// Authenticate answers ErrInvalidCredentials for both unknown emails and wrong passwords.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr("load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr("get user", err)
	}
	return u, nil
}

func (s *UserService) ListManagers(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionList, policy.ResourceManager, nil)); err != nil {
		return nil, err
	}
	users, err := s.users.ListByRole(ctx, models.RoleManager)
	if err != nil {
		return nil, storageErr("list managers", err)
	}
	return users, nil
}

func (s *UserService) CreateManager(ctx context.Context, actor models.Actor, in RegisterInput) (*models.User, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceManager, nil)); err != nil {
		return nil, err
	}
	return s.createUser(ctx, in, models.RoleManager)
}

func (s *UserService) UpdateManager(ctx context.Context, actor models.Actor, id string, in ManagerUpdate) (*models.User, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceManager, nil)); err != nil {
		return nil, err
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleManager {
		return nil, ErrUserNotFound
	}

	v := validation.Violations{}
	var columns []string
	if in.Email != nil {
		email := models.NormalizeEmail(*in.Email)
		validation.Required("email", email, v)
		validation.Email("email", email, v)
		u.Email = email
		columns = append(columns, "email")
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
		columns = append(columns, "name")
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
		columns = append(columns, "phone")
	}
	if in.Password != nil && *in.Password != "" {
		checkPassword(*in.Password, v)
		if v.Empty() {
			hash, err := s.hash(*in.Password)
			if err != nil {
				return nil, err
			}
			u.PasswordHash = hash
			columns = append(columns, "password_hash")
		}
	}
	if !v.Empty() {
		return nil, invalid(v)
	}
	if len(columns) == 0 {
		return u, nil
	}

	if err := s.users.Update(ctx, u, columns...); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, storageErr("update manager", err)
	}
	s.invalidateSession(id)
	return u, nil
}

// DeleteManager only removes accounts that are currently managers.
func (s *UserService) DeleteManager(ctx context.Context, actor models.Actor, id string) error {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionDelete, policy.ResourceManager, nil)); err != nil {
		return err
	}
	if err := s.users.DeleteWithRole(ctx, id, models.RoleManager); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return storageErr("delete manager", err)
	}
	s.invalidateSession(id)
	s.log.Info("manager deleted", zap.String("user_id", id), zap.String("actor", actor.UserID))
	return nil
}

// UpdateProfile lets a client edit their own contact details.
func (s *UserService) UpdateProfile(ctx context.Context, actor models.Actor, in ProfileUpdate) (*models.User, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceProfile, nil)); err != nil {
		return nil, err
	}
	u, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	u.Name = strings.TrimSpace(in.Name)
	u.Phone = strings.TrimSpace(in.Phone)
	u.MarketingOptIn = in.MarketingOptIn
	if err := s.users.Update(ctx, u, "name", "phone", "marketing_opt_in"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr("update profile", err)
	}
	return u, nil
}

func (s *UserService) invalidateSession(userID string) {
	if s.sessions != nil {
		s.sessions.InvalidateUser(userID)
	}
}
