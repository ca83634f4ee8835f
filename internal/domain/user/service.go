package user

import (
	"context"
	"fmt"
	"time"

	"github.com/NLight-n/IRLog/internal/domain/audit"
	"github.com/NLight-n/IRLog/internal/platform/auth"
	"github.com/NLight-n/IRLog/pkg/columns"
)

type Service struct {
	repo     Repository
	recorder *audit.Recorder
	secret   []byte
	tokenTTL time.Duration
}

func NewService(repo Repository, recorder *audit.Recorder, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, recorder: recorder, secret: secret, tokenTTL: tokenTTL}
}

// Login verifies credentials and issues a session token carrying the user's
// capability set.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	if !auth.VerifyPassword(password, u.PasswordHash) {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	token, err := auth.IssueToken(s.secret, u.ID, u.Username, u.Permissions, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// CreateInput carries the fields for a new account.
type CreateInput struct {
	Username    string             `json:"username"`
	Password    string             `json:"password"`
	Email       string             `json:"email"`
	Role        string             `json:"role"`
	Permissions auth.PermissionSet `json:"permissions"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	if in.Username == "" || in.Password == "" || in.Email == "" || in.Role == "" {
		return nil, fmt.Errorf("username, password, email and role are required")
	}
	if in.Role != RoleAdmin && in.Role != RoleUser {
		return nil, fmt.Errorf("invalid role: %s", in.Role)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		Username:     in.Username,
		Email:        in.Email,
		Role:         in.Role,
		Theme:        "light",
		Permissions:  in.Permissions,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionCreate, "users", fmt.Sprint(u.ID), nil, u)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// AdminUpdateInput is the account update an administrator may perform.
type AdminUpdateInput struct {
	Username    *string             `json:"username"`
	Password    *string             `json:"password"`
	Email       *string             `json:"email"`
	Role        *string             `json:"role"`
	Permissions *auth.PermissionSet `json:"permissions"`
}

func (s *Service) AdminUpdate(ctx context.Context, id int, in AdminUpdateInput) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *u
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Role != nil {
		if *in.Role != RoleAdmin && *in.Role != RoleUser {
			return nil, fmt.Errorf("invalid role: %s", *in.Role)
		}
		u.Role = *in.Role
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if in.Permissions != nil {
		u.Permissions = *in.Permissions
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionUpdate, "users", fmt.Sprint(id), &before, u)
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if auth.UserIDFromContext(ctx) == id {
		return fmt.Errorf("cannot delete your own account")
	}
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.ActionDelete, "users", fmt.Sprint(id), before, nil)
	return nil
}

// Profile returns the caller's own account with the saved column layout
// reconciled against the current defaults.
func (s *Service) Profile(ctx context.Context) (*User, error) {
	u, err := s.repo.GetByID(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	u.Columns = columns.Resolve(u.Columns, columns.Defaults())
	return u, nil
}

// ProfileUpdateInput is the self-service profile update. A password change
// requires the current password.
type ProfileUpdateInput struct {
	Username        *string          `json:"username"`
	Email           *string          `json:"email"`
	Password        *string          `json:"password"`
	CurrentPassword *string          `json:"currentPassword"`
	Theme           *string          `json:"theme"`
	AccentColor     *string          `json:"accentColor"`
	Columns         []columns.Column `json:"columns"`
}

func (s *Service) UpdateProfile(ctx context.Context, in ProfileUpdateInput) (*User, error) {
	u, err := s.repo.GetByID(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	before := *u
	if in.Username != nil && *in.Username != "" {
		u.Username = *in.Username
	}
	if in.Email != nil && *in.Email != "" {
		u.Email = *in.Email
	}
	if in.Password != nil && *in.Password != "" {
		if in.CurrentPassword == nil {
			return nil, fmt.Errorf("current password is required")
		}
		if !auth.VerifyPassword(*in.CurrentPassword, u.PasswordHash) {
			return nil, fmt.Errorf("current password is incorrect")
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if in.Theme != nil && *in.Theme != "" {
		u.Theme = *in.Theme
	}
	if in.AccentColor != nil && *in.AccentColor != "" {
		u.AccentColor = *in.AccentColor
	}
	if in.Columns != nil {
		// Persist the full ordered list so a reload resolves to the same view.
		u.Columns = columns.Persist(columns.Visible(in.Columns), columns.Defaults())
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionUpdate, "users", fmt.Sprint(u.ID), &before, u)
	u.Columns = columns.Resolve(u.Columns, columns.Defaults())
	return u, nil
}

// EnsureAdmin creates an initial administrator account when the user table is
// empty. Used by first-run setup and the admin CLI.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, email string) (*User, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("users already exist")
	}
	return s.Create(ctx, CreateInput{
		Username: username,
		Password: password,
		Email:    email,
		Role:     RoleAdmin,
		Permissions: auth.PermissionSet{
			ViewOnly:           true,
			CreateProcedureLog: true,
			EditProcedureLog:   true,
			EditSettings:       true,
			ManageUsers:        true,
		},
	})
}
