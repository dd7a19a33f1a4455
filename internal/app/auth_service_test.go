package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"coursegen/internal/pkg/jwtutil"
	"coursegen/internal/repository"
	"coursegen/internal/repository/repotest"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(repository.NewUserRepository(repotest.DB(t)), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: " ada ", Email: "Ada@Example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if registered.User.ID == 0 || registered.User.Username != "ada" || registered.User.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", registered.User)
	}
	claims, err := jwtutil.ParseToken("test-secret", registered.Token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if claims.UserID != registered.User.ID {
		t.Fatalf("token for user %d, want %d", claims.UserID, registered.User.ID)
	}

	loggedIn, err := svc.Login(ctx, LoginInput{Username: "ada", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if loggedIn.User.LastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}

	user, err := svc.GetUserByID(ctx, registered.User.ID)
	if err != nil || user == nil || user.LastLoginAt == nil {
		t.Fatalf("unexpected stored user %+v, err %v", user, err)
	}
}

func TestRegisterConflictsAndValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"same username", RegisterInput{Username: "ada", Email: "other@example.com", Password: "correct horse"}, ErrUsernameExists},
		{"same email", RegisterInput{Username: "grace", Email: "ADA@example.com", Password: "correct horse"}, ErrEmailExists},
		{"short password", RegisterInput{Username: "grace", Email: "grace@example.com", Password: "short"}, ErrInvalidInput},
		{"missing email", RegisterInput{Username: "grace", Password: "correct horse"}, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := svc.Login(ctx, LoginInput{Username: "ada", Password: "wrong password"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Username: "nobody", Password: "correct horse"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for unknown user, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
