// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package backend

import (
	"context"
	"net/http"

	"github.com/tomtom215/metroline/internal/apiclient"
	"github.com/tomtom215/metroline/internal/models"
)

// Login exchanges credentials for an access token. The legacy origin also
// sets its session cookie in the adapter's jar.
func (c *Client) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	const path = "auth/login"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.LoginResponse](ctx, c.legacy, http.MethodPost, path, req)
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return noData(ctx, c.legacy, http.MethodPost, "auth/logout", nil)
}

// SendOTP mails a one-time code for registration or password reset.
func (c *Client) SendOTP(ctx context.Context, req *models.SendOTPRequest) error {
	const path = "auth/send-otp"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return err
	}
	return noData(ctx, c.legacy, http.MethodPost, path, req)
}

// VerifyOTP checks a one-time code.
func (c *Client) VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.VerifyOTPResponse, error) {
	const path = "auth/verify-otp"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.VerifyOTPResponse](ctx, c.legacy, http.MethodPost, path, req)
}

// Register creates an account after OTP verification.
func (c *Client) Register(ctx context.Context, req *models.RegisterRequest) (*models.Profile, error) {
	const path = "auth/register"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Profile](ctx, c.legacy, http.MethodPost, path, req)
}

// ForgotPassword mails a reset code.
func (c *Client) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	const path = "auth/forgot-password"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return err
	}
	return noData(ctx, c.legacy, http.MethodPost, path, req)
}

// ResetPassword sets a new password using a reset code.
func (c *Client) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	const path = "auth/reset-password"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return err
	}
	return noData(ctx, c.legacy, http.MethodPost, path, req)
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, req *models.ChangePasswordRequest) error {
	const path = "auth/change-password"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return err
	}
	return noData(ctx, c.legacy, http.MethodPost, path, req)
}

// GetMe returns the signed-in user's profile.
func (c *Client) GetMe(ctx context.Context) (*models.Profile, error) {
	return get[*models.Profile](ctx, c.legacy, "users/me")
}

// UpdateMe updates the signed-in user's profile.
func (c *Client) UpdateMe(ctx context.Context, req *models.UpdateProfileRequest) (*models.Profile, error) {
	const path = "users/me"
	if err := checkInput(http.MethodPut, path, req); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Profile](ctx, c.legacy, http.MethodPut, path, req)
}
