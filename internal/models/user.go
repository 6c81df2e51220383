// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package models

import "time"

// Role names as sent by the backend.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleStaff = "ROLE_STAFF"
	RoleUser  = "ROLE_USER"
)

// Profile is the signed-in user as returned by users/me.
type Profile struct {
	ID          int64      `json:"id" validate:"gt=0"`
	Email       string     `json:"email" validate:"required,email"`
	FullName    string     `json:"fullName"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	Role        string     `json:"role" validate:"required,role"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	DateOfBirth string     `json:"dateOfBirth,omitempty"`
	IsStudent   bool       `json:"isStudent"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Clone returns a deep copy. A nil profile clones to nil.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.CreatedAt != nil {
		t := *p.CreatedAt
		c.CreatedAt = &t
	}
	return &c
}

// UpdateProfileRequest is the body of PUT users/me. Empty fields are left unchanged.
type UpdateProfileRequest struct {
	FullName    string `json:"fullName,omitempty" validate:"omitempty,max=100"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,vnphone"`
	AvatarURL   string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	DateOfBirth string `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
