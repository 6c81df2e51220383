// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package models

// LoginRequest is the body of POST auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse is returned by a successful login. The backend also sets an
// httpOnly session cookie on the legacy origin.
type LoginResponse struct {
	AccessToken  string   `json:"accessToken" validate:"required"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	User         *Profile `json:"user,omitempty"`
}

// OTPPurpose selects the flow an OTP is issued for.
type OTPPurpose string

const (
	OTPPurposeRegister      OTPPurpose = "REGISTER"
	OTPPurposeResetPassword OTPPurpose = "RESET_PASSWORD"
)

// SendOTPRequest asks the backend to mail a one-time code.
type SendOTPRequest struct {
	Email   string     `json:"email" validate:"required,email"`
	Purpose OTPPurpose `json:"purpose" validate:"required,oneof=REGISTER RESET_PASSWORD"`
}

// VerifyOTPRequest checks a one-time code.
type VerifyOTPRequest struct {
	Email   string     `json:"email" validate:"required,email"`
	OTP     string     `json:"otp" validate:"required,otp"`
	Purpose OTPPurpose `json:"purpose" validate:"required,oneof=REGISTER RESET_PASSWORD"`
}

// VerifyOTPResponse carries the token that authorises the next step.
type VerifyOTPResponse struct {
	Verified          bool   `json:"verified"`
	VerificationToken string `json:"verificationToken,omitempty"`
}

// RegisterRequest completes registration after OTP verification.
type RegisterRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=6,max=72"`
	FullName          string `json:"fullName" validate:"required,max=100"`
	PhoneNumber       string `json:"phoneNumber,omitempty" validate:"omitempty,vnphone"`
	VerificationToken string `json:"verificationToken,omitempty"`
	OTP               string `json:"otp,omitempty" validate:"omitempty,otp"`
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest finishes the password reset flow.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,otp"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// ChangePasswordRequest changes the password of the signed-in user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72,nefield=CurrentPassword"`
}
