package services

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{
		Name:     "Zé",
		Email:    "  Ze@Example.COM ",
		Password: "segredo-forte",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if user.Email != "ze@example.com" {
		t.Errorf("email = %q, want normalized lowercase", user.Email)
	}
	if user.PasswordHash == "segredo-forte" {
		t.Error("password stored in plain text")
	}

	logged, err := service.Login(ctx, LoginInput{Email: "ze@example.com", Password: "segredo-forte"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("logged in as user %d, want %d", logged.ID, user.ID)
	}

	if _, err := service.Login(ctx, LoginInput{Email: "ze@example.com", Password: "errada"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := service.Login(ctx, LoginInput{Email: "ninguem@example.com", Password: "segredo-forte"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"short password", RegisterInput{Name: "Zé", Email: "ze@example.com", Password: "curta"}, ErrPasswordTooShort},
		{"blank name", RegisterInput{Name: "  ", Email: "ze@example.com", Password: "segredo-forte"}, ErrValidationFailed},
		{"bad email", RegisterInput{Name: "Zé", Email: "not-an-email", Password: "segredo-forte"}, ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Register(ctx, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	input := RegisterInput{Name: "Zé", Email: "ze@example.com", Password: "segredo-forte"}
	if _, err := service.Register(ctx, input); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}
	if _, err := service.Register(ctx, input); !errors.Is(err, ErrUserEmailConflict) {
		t.Errorf("second Register() error = %v, want ErrUserEmailConflict", err)
	}
}

func TestGetUser(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{Name: "Zé", Email: "ze@example.com", Password: "segredo-forte"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	got, err := service.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if got.Name != "Zé" {
		t.Errorf("name = %q, want Zé", got.Name)
	}

	if _, err := service.GetUser(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser(999) error = %v, want ErrUserNotFound", err)
	}
}
