package handler

import (
	"time"

	"github.com/rmaalouf/user-admin-api/internal/service"
)

// ----- response DTOs -----

type rolePart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type permissionPart struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type imagePart struct {
	ID   uint64 `json:"id"`
	Link string `json:"link"`
	Size int64  `json:"size"`
}

type userPart struct {
	ID          uint64           `json:"id"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Email       string           `json:"email"`
	IsActive    bool             `json:"is_active"`
	Roles       []rolePart       `json:"roles"`
	Permissions []permissionPart `json:"permissions"`
	Image       *imagePart       `json:"image,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

func userPayload(d service.UserDetail) userPart {
	p := userPart{
		ID:          d.User.ID,
		FirstName:   d.User.FirstName,
		LastName:    d.User.LastName,
		Email:       d.User.Email,
		IsActive:    d.User.IsActive,
		Roles:       make([]rolePart, 0, len(d.Roles)),
		Permissions: make([]permissionPart, 0, len(d.Permissions)),
		CreatedAt:   d.User.CreatedAt,
	}
	for _, r := range d.Roles {
		p.Roles = append(p.Roles, rolePart{ID: r.ID, Name: r.Name, Slug: r.Slug})
	}
	for _, perm := range d.Permissions {
		p.Permissions = append(p.Permissions, permissionPart{
			ID: perm.ID, Name: perm.Name, Slug: perm.Slug, Description: perm.Description,
		})
	}
	if d.Image != nil {
		p.Image = &imagePart{ID: d.Image.ID, Link: d.Image.Link, Size: d.Image.Size}
	}
	return p
}
