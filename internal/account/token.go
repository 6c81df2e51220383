// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package account

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/metroline/internal/models"
)

// TokenInfo is what the client reads from an access token. The signature is
// not checked; the backend does that on every request.
type TokenInfo struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry before now.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

type accessClaims struct {
	jwt.RegisteredClaims
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// InspectToken decodes the claims of a JWT access token without verifying it.
func InspectToken(token string) (TokenInfo, error) {
	if token == "" {
		return TokenInfo{}, fmt.Errorf("empty token")
	}
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("parse access token: %w", err)
	}

	info := TokenInfo{Subject: claims.Subject, Role: claims.Role}
	if info.Role == "" && len(claims.Roles) > 0 {
		info.Role = claims.Roles[0]
		if slices.Contains(claims.Roles, models.RoleAdmin) {
			info.Role = models.RoleAdmin
		}
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
