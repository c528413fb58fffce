package users

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
	// adminEmails grants the admin role on login.
	adminEmails map[string]struct{}
}

func NewService(repo Repo, adminEmails []string) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Service{Repo: repo, adminEmails: admins}
}

// UpsertFromAuth persists the reviewer identity from OAuth and assigns the
// role. Admin status follows the configured allowlist, so demotion takes
// effect on the next login.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return User{}, errors.New("user id and email are required")
	}
	user.Role = s.RoleFor(user.Email)
	if err := s.Repo.Upsert(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// RoleFor resolves the role granted to an email address.
func (s *Service) RoleFor(email string) Role {
	if _, ok := s.adminEmails[strings.ToLower(strings.TrimSpace(email))]; ok {
		return RoleAdmin
	}
	return RoleReviewer
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}
