// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package validation

import (
	"errors"
	"strings"
	"testing"
)

type testLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type testStation struct {
	ID   int64  `json:"id" validate:"gt=0"`
	Name string `json:"name" validate:"required"`
}

type testRegister struct {
	Phone string `json:"phone" validate:"omitempty,vnphone"`
	OTP   string `json:"otp" validate:"otp"`
	Role  string `json:"role" validate:"omitempty,role"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
	}{
		{"valid login", &testLogin{Email: "an@example.vn", Password: "secret1"}, nil},
		{"missing email", &testLogin{Password: "secret1"}, []string{"email"}},
		{"short password", &testLogin{Email: "an@example.vn", Password: "x"}, []string{"password"}},
		{"bad otp and phone", &testRegister{Phone: "123", OTP: "12a456"}, []string{"phone", "otp"}},
		{"valid register", &testRegister{Phone: "+84912345678", OTP: "123456", Role: "ROLE_USER"}, nil},
		{"bad role", &testRegister{OTP: "123456", Role: "admin"}, []string{"role"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected failures on %v", tt.wantFields)
			}
			got := strings.Join(err.Fields(), ",")
			if got != strings.Join(tt.wantFields, ",") {
				t.Errorf("fields = %s, want %v", got, tt.wantFields)
			}
		})
	}
}

func TestValidateSlicesAndPointers(t *testing.T) {
	t.Parallel()

	stations := []testStation{{ID: 1, Name: "Bến Thành"}, {ID: 0, Name: ""}}
	err := Validate(stations)
	if err == nil {
		t.Fatal("expected error for invalid element")
	}
	var ve *RequestValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *RequestValidationError, got %T", err)
	}
	if got := strings.Join(ve.Fields(), ","); got != "[1].id,[1].name" {
		t.Errorf("fields = %s", got)
	}

	if err := Validate(&stations[0]); err != nil {
		t.Errorf("valid pointer failed: %v", err)
	}
	var nilStation *testStation
	if err := Validate(nilStation); err != nil {
		t.Errorf("nil pointer should pass: %v", err)
	}
	if err := Validate(42); err != nil {
		t.Errorf("scalar should pass: %v", err)
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&testLogin{Email: "bad", Password: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"email must be a valid email address", "password must be at least 6 characters"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
