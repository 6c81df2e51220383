// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package account

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/metroline/internal/backend"
	"github.com/tomtom215/metroline/internal/models"
)

// ErrInvalidStep is returned when a flow method is called out of order.
var ErrInvalidStep = errors.New("account: invalid step")

// ErrOTPRejected is returned when the backend answers a verification without
// confirming the code.
var ErrOTPRejected = errors.New("account: otp rejected")

// Step is the position of a Registration.
type Step int

const (
	StepEmail Step = iota
	StepOTPSent
	StepVerified
	StepCompleted
)

func (s Step) String() string {
	switch s {
	case StepEmail:
		return "email"
	case StepOTPSent:
		return "otp_sent"
	case StepVerified:
		return "verified"
	case StepCompleted:
		return "completed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

func invalidStep(op string, at Step) error {
	return fmt.Errorf("%w: %s at step %s", ErrInvalidStep, op, at)
}

// Details are the fields asked for once the email is verified.
type Details struct {
	Password    string
	FullName    string
	PhoneNumber string
}

// Registration walks email, OTP, verification and account creation. The
// code may be re-sent until it is verified.
type Registration struct {
	api *backend.Client

	mu        sync.Mutex
	step      Step
	email     string
	otp       string
	verifyTok string
}

// Step returns the current step.
func (r *Registration) Step() Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step
}

// Email returns the address the flow was started with.
func (r *Registration) Email() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.email
}

// SendOTP mails a registration code to email.
func (r *Registration) SendOTP(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.step != StepEmail && r.step != StepOTPSent {
		return invalidStep("send otp", r.step)
	}
	err := r.api.SendOTP(ctx, &models.SendOTPRequest{Email: email, Purpose: models.OTPPurposeRegister})
	if err != nil {
		return err
	}
	r.email = email
	r.step = StepOTPSent
	return nil
}

// VerifyOTP checks the mailed code.
func (r *Registration) VerifyOTP(ctx context.Context, otp string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.step != StepOTPSent {
		return invalidStep("verify otp", r.step)
	}
	resp, err := r.api.VerifyOTP(ctx, &models.VerifyOTPRequest{
		Email:   r.email,
		OTP:     otp,
		Purpose: models.OTPPurposeRegister,
	})
	if err != nil {
		return err
	}
	if !resp.Verified {
		return ErrOTPRejected
	}
	r.otp = otp
	r.verifyTok = resp.VerificationToken
	r.step = StepVerified
	return nil
}

// Complete creates the account. The user signs in separately afterwards.
func (r *Registration) Complete(ctx context.Context, d Details) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.step != StepVerified {
		return nil, invalidStep("complete", r.step)
	}
	p, err := r.api.Register(ctx, &models.RegisterRequest{
		Email:             r.email,
		Password:          d.Password,
		FullName:          d.FullName,
		PhoneNumber:       d.PhoneNumber,
		VerificationToken: r.verifyTok,
		OTP:               r.otp,
	})
	if err != nil {
		return nil, err
	}
	r.step = StepCompleted
	return p, nil
}

// PasswordReset requests a reset code and then sets a new password.
type PasswordReset struct {
	api *backend.Client

	mu        sync.Mutex
	email     string
	requested bool
	done      bool
}

// Request mails a reset code to email. It may be repeated until Reset succeeds.
func (p *PasswordReset) Request(ctx context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return fmt.Errorf("%w: request after reset", ErrInvalidStep)
	}
	if err := p.api.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: email}); err != nil {
		return err
	}
	p.email = email
	p.requested = true
	return nil
}

// Reset sets newPassword using the mailed code.
func (p *PasswordReset) Reset(ctx context.Context, otp, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return fmt.Errorf("%w: password already reset", ErrInvalidStep)
	}
	if !p.requested {
		return fmt.Errorf("%w: reset before request", ErrInvalidStep)
	}
	err := p.api.ResetPassword(ctx, &models.ResetPasswordRequest{
		Email:       p.email,
		OTP:         otp,
		NewPassword: newPassword,
	})
	if err != nil {
		return err
	}
	p.done = true
	return nil
}
