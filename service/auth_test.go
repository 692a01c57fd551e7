package service

import (
	"errors"
	"testing"
	"time"

	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
)

func TestSignUp(t *testing.T) {
	t.Run("creates a new user", func(t *testing.T) {
		s, repo := newTestService()
		user, err := s.SignUp(dto.SignUpRequestBody{Username: "alice", Email: "alice@example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Role != data.RoleUser {
			t.Errorf("got role %q; want %q", user.Role, data.RoleUser)
		}
		if len(repo.users) != 1 {
			t.Errorf("got %d user records; want 1", len(repo.users))
		}
	})

	t.Run("repeat signup with the same pair does not duplicate", func(t *testing.T) {
		s, repo := newTestService()
		if _, err := s.SignUp(dto.SignUpRequestBody{Username: "alice", Email: "alice@example.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := s.SignUp(dto.SignUpRequestBody{Username: "alice", Email: "alice@example.com"}); err != nil {
			t.Fatalf("unexpected error on repeat signup: %v", err)
		}
		if len(repo.users) != 1 {
			t.Errorf("got %d user records; want 1", len(repo.users))
		}
	})

	t.Run("taken username with a different email fails", func(t *testing.T) {
		s, _ := newTestService()
		if _, err := s.SignUp(dto.SignUpRequestBody{Username: "alice", Email: "alice@example.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := s.SignUp(dto.SignUpRequestBody{Username: "alice", Email: "other@example.com"})
		if !errors.Is(err, ErrFailedValidation) {
			t.Fatalf("got %v; want a validation error", err)
		}
		fields, ok := FieldErrors(err)
		if !ok {
			t.Fatal("expected field-level errors")
		}
		if _, ok := fields["username"]; !ok {
			t.Errorf("expected an error on the username field, got %v", fields)
		}
	})

	t.Run("taken email with a different username fails", func(t *testing.T) {
		s, _ := newTestService()
		if _, err := s.SignUp(dto.SignUpRequestBody{Username: "alice", Email: "alice@example.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := s.SignUp(dto.SignUpRequestBody{Username: "bob", Email: "alice@example.com"})
		if !errors.Is(err, ErrFailedValidation) {
			t.Fatalf("got %v; want a validation error", err)
		}
		fields, _ := FieldErrors(err)
		if _, ok := fields["email"]; !ok {
			t.Errorf("expected an error on the email field, got %v", fields)
		}
	})

	t.Run("reserved username me fails in any case", func(t *testing.T) {
		s, _ := newTestService()
		for _, username := range []string{"me", "Me", "ME"} {
			_, err := s.SignUp(dto.SignUpRequestBody{Username: username, Email: "me@example.com"})
			if !errors.Is(err, ErrFailedValidation) {
				t.Errorf("username %q: got %v; want a validation error", username, err)
			}
		}
	})
}

func TestCreateAccessToken(t *testing.T) {
	signUp := func(t *testing.T, s *service) *data.User {
		t.Helper()
		user, err := s.SignUp(dto.SignUpRequestBody{Username: "alice", Email: "alice@example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return user
	}

	t.Run("unknown username is not found", func(t *testing.T) {
		s, _ := newTestService()
		_, err := s.CreateAccessToken(dto.CreateAccessTokenRequestBody{Username: "ghost", ConfirmationCode: "1.ABCDEF"})
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("got %v; want ErrRecordNotFound", err)
		}
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		s, _ := newTestService()
		signUp(t, s)
		_, err := s.CreateAccessToken(dto.CreateAccessTokenRequestBody{Username: "alice", ConfirmationCode: "1.ABCDEF"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("got %v; want ErrInvalidCredentials", err)
		}
	})

	t.Run("valid code yields a token usable for authentication", func(t *testing.T) {
		s, _ := newTestService()
		user := signUp(t, s)
		code := data.GenerateConfirmationCode(user, []byte(s.config.Auth.Secret), 30*time.Minute)
		token, err := s.CreateAccessToken(dto.CreateAccessTokenRequestBody{Username: "alice", ConfirmationCode: code})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token == "" {
			t.Fatal("got empty token")
		}
		got, err := s.GetUserForAccessToken(token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Username != "alice" {
			t.Errorf("got username %q; want %q", got.Username, "alice")
		}
	})

	t.Run("a code cannot be redeemed twice", func(t *testing.T) {
		s, _ := newTestService()
		user := signUp(t, s)
		code := data.GenerateConfirmationCode(user, []byte(s.config.Auth.Secret), 30*time.Minute)
		if _, err := s.CreateAccessToken(dto.CreateAccessTokenRequestBody{Username: "alice", ConfirmationCode: code}); err != nil {
			t.Fatalf("unexpected error on first redemption: %v", err)
		}
		_, err := s.CreateAccessToken(dto.CreateAccessTokenRequestBody{Username: "alice", ConfirmationCode: code})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("got %v; want ErrInvalidCredentials on replay", err)
		}
	})

	t.Run("garbage bearer token is rejected", func(t *testing.T) {
		s, _ := newTestService()
		_, err := s.GetUserForAccessToken("not.a.jwt")
		if !errors.Is(err, ErrInvalidAccessToken) {
			t.Fatalf("got %v; want ErrInvalidAccessToken", err)
		}
	})
}
