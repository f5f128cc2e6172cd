package domain

import (
	"context"
	"net/mail"
	"strings"

	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/store"
)

// UserInput carries the fields a caller may set on a user
type UserInput struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
}

// UserUpdate is a partial update; nil fields are left alone
type UserUpdate struct {
	Name         *string `json:"name,omitempty"`
	BusinessName *string `json:"businessName,omitempty"`
}

// CreateUser stores a new user
func (h *Helpers) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email %q", in.Email)
	}

	user := &models.User{
		ID:           NewID("user"),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		BusinessName: strings.TrimSpace(in.BusinessName),
	}
	user.Stamp(h.clock.Now())

	return h.users.Put(ctx, user)
}

// GetUser returns the user or nil when absent
func (h *Helpers) GetUser(ctx context.Context, id string) (*models.User, error) {
	return h.users.Get(ctx, id)
}

// GetUserByEmail looks a user up by email, case-insensitively
func (h *Helpers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := h.users.Query(ctx, store.QueryOptions{
		Where: map[string]any{"email": strings.ToLower(strings.TrimSpace(email))},
		Limit: 1,
	})
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return &users[0], nil
}

// ListUsers returns every user, oldest first
func (h *Helpers) ListUsers(ctx context.Context) ([]models.User, error) {
	return h.users.Query(ctx, store.QueryOptions{OrderBy: "createdAt"})
}

// UpdateUser merges the update into the stored user
func (h *Helpers) UpdateUser(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	user, err := h.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", id)
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.BusinessName != nil {
		user.BusinessName = strings.TrimSpace(*update.BusinessName)
	}
	user.Touch(h.clock.Now())

	return h.users.Put(ctx, user)
}

// EnsureUser is the login/registration entry point: it returns the user with
// in.Email, creating it when missing. Non-empty profile fields are refreshed.
func (h *Helpers) EnsureUser(ctx context.Context, in UserInput) (*models.User, error) {
	existing, err := h.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return h.CreateUser(ctx, in)
	}

	update := UserUpdate{}
	if name := strings.TrimSpace(in.Name); name != "" && name != existing.Name {
		update.Name = &name
	}
	if business := strings.TrimSpace(in.BusinessName); business != "" && business != existing.BusinessName {
		update.BusinessName = &business
	}
	if update.Name == nil && update.BusinessName == nil {
		return existing, nil
	}
	return h.UpdateUser(ctx, existing.ID, update)
}
