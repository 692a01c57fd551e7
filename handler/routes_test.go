package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/okenov/recensio/config"
	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/jsonlog"
	"github.com/okenov/recensio/service"
	"golang.org/x/time/rate"
)

// serviceStub embeds the Service interface so tests only implement the
// methods a route under test actually calls.
type serviceStub struct {
	service.Service
	user *data.User

	signUp            func(dto.SignUpRequestBody) (*data.User, error)
	createAccessToken func(dto.CreateAccessTokenRequestBody) (string, error)
	getTitle          func(int64) (*data.Title, error)
	getComment        func(int64, int64, int64) (*data.Comment, error)
	updateReview      func(int64, int64, *data.User, dto.UpdateReviewRequestBody) (*data.Review, error)
}

func (s *serviceStub) GetUserForAccessToken(token string) (*data.User, error) {
	if s.user != nil && token == "valid" {
		return s.user, nil
	}
	return nil, service.ErrInvalidAccessToken
}

func (s *serviceStub) SignUp(requestBody dto.SignUpRequestBody) (*data.User, error) {
	return s.signUp(requestBody)
}

func (s *serviceStub) CreateAccessToken(requestBody dto.CreateAccessTokenRequestBody) (string, error) {
	return s.createAccessToken(requestBody)
}

func (s *serviceStub) GetTitle(titleID int64) (*data.Title, error) {
	return s.getTitle(titleID)
}

func (s *serviceStub) GetComment(titleID, reviewID, commentID int64) (*data.Comment, error) {
	return s.getComment(titleID, reviewID, commentID)
}

func (s *serviceStub) UpdateReview(titleID, reviewID int64, user *data.User, requestBody dto.UpdateReviewRequestBody) (*data.Review, error) {
	return s.updateReview(titleID, reviewID, user, requestBody)
}

func newTestHandler(stub *serviceStub) *Handler {
	var cfg config.Config
	logger := jsonlog.New(io.Discard, jsonlog.LevelFatal)
	limiters := ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](time.Minute))
	return New(cfg, logger, limiters, stub)
}

func TestPutIsMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&serviceStub{})
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	paths := []string{
		"/v1/titles/1",
		"/v1/titles/1/reviews/1",
		"/v1/titles/1/reviews/1/comments/1",
		"/v1/users/me",
		"/v1/users/alice",
	}
	for _, path := range paths {
		req, err := http.NewRequest(http.MethodPut, srv.URL+path, strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("PUT %s: got status %d; want %d", path, resp.StatusCode, http.StatusMethodNotAllowed)
		}
	}
}

func TestShowTitleRatingIsNullWithoutReviews(t *testing.T) {
	stub := &serviceStub{
		getTitle: func(titleID int64) (*data.Title, error) {
			return &data.Title{ID: titleID, Name: "Interstellar", Year: 2014, Genres: []data.Genre{}}, nil
		},
	}
	h := newTestHandler(stub)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/v1/titles/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d; want %d", resp.StatusCode, http.StatusOK)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(body), `"rating": null`) {
		t.Errorf("response body %s does not carry a null rating", body)
	}
}

func TestCommentChainMismatchIsNotFound(t *testing.T) {
	stub := &serviceStub{
		getComment: func(titleID, reviewID, commentID int64) (*data.Comment, error) {
			return nil, service.ErrRecordNotFound
		},
	}
	h := newTestHandler(stub)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/v1/titles/2/reviews/1/comments/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("got status %d; want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestUpdateReviewAuthorization(t *testing.T) {
	stub := &serviceStub{
		user: &data.User{ID: 7, Username: "bob", Role: data.RoleUser},
		updateReview: func(titleID, reviewID int64, user *data.User, requestBody dto.UpdateReviewRequestBody) (*data.Review, error) {
			return nil, service.ErrNotPermitted
		},
	}
	h := newTestHandler(stub)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	t.Run("without a token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/v1/titles/1/reviews/1", strings.NewReader(`{"text": "edited"}`))
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("got status %d; want %d", resp.StatusCode, http.StatusUnauthorized)
		}
	})

	t.Run("as a non-author", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/v1/titles/1/reviews/1", strings.NewReader(`{"text": "edited"}`))
		req.Header.Set("Authorization", "Bearer valid")
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("got status %d; want %d", resp.StatusCode, http.StatusForbidden)
		}
	})
}

func TestCreateAccessTokenStatusCodes(t *testing.T) {
	stub := &serviceStub{
		createAccessToken: func(requestBody dto.CreateAccessTokenRequestBody) (string, error) {
			switch requestBody.Username {
			case "ghost":
				return "", service.ErrRecordNotFound
			case "alice":
				return "", service.ErrInvalidCredentials
			default:
				return "a.b.c", nil
			}
		},
	}
	h := newTestHandler(stub)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"unknown user", `{"username": "ghost", "confirmation_code": "1.CODE"}`, http.StatusNotFound},
		{"wrong code", `{"username": "alice", "confirmation_code": "1.CODE"}`, http.StatusBadRequest},
		{"valid code", `{"username": "bob", "confirmation_code": "1.CODE"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := srv.Client().Post(srv.URL+"/v1/auth/token", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("got status %d; want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestAdminOnlyRoutes(t *testing.T) {
	stub := &serviceStub{
		user: &data.User{ID: 7, Username: "bob", Role: data.RoleUser},
	}
	h := newTestHandler(stub)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		resp, err := srv.Client().Post(srv.URL+"/v1/categories", "application/json", strings.NewReader(`{"name": "Movies", "slug": "movies"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("got status %d; want %d", resp.StatusCode, http.StatusUnauthorized)
		}
	})

	t.Run("ordinary user is forbidden", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/categories", strings.NewReader(`{"name": "Movies", "slug": "movies"}`))
		req.Header.Set("Authorization", "Bearer valid")
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("got status %d; want %d", resp.StatusCode, http.StatusForbidden)
		}
	})
}

func TestSignUpEchoesUsernameAndEmail(t *testing.T) {
	stub := &serviceStub{
		signUp: func(requestBody dto.SignUpRequestBody) (*data.User, error) {
			return &data.User{Username: requestBody.Username, Email: requestBody.Email, Role: data.RoleUser}, nil
		},
	}
	h := newTestHandler(stub)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := srv.Client().Post(srv.URL+"/v1/auth/signup", "application/json", strings.NewReader(`{"username": "alice", "email": "alice@example.com"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d; want %d", resp.StatusCode, http.StatusOK)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`"username": "alice"`, `"email": "alice@example.com"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("response body %s does not contain %s", body, want)
		}
	}
}

func TestRateLimitExceeded(t *testing.T) {
	h := newTestHandler(&serviceStub{})
	h.config.Limiter.Enabled = true
	h.config.Limiter.RPS = 0
	h.config.Limiter.Burst = 1
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	// The burst covers the first request; with no refill the second one from
	// the same client IP must be rejected.
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		resp, err := srv.Client().Get(srv.URL + "/v1/healthcheck")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("request %d: got status %d; want %d", i+1, resp.StatusCode, want)
		}
	}
}
