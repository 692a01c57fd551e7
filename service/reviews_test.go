package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
)

func seedTitle(t *testing.T, repo *repoStub, name string) *data.Title {
	t.Helper()
	title := &data.Title{Name: name, Year: 1994}
	if err := repo.CreateTitle(title); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return title
}

func seedUser(t *testing.T, repo *repoStub, username string, role data.Role) *data.User {
	t.Helper()
	user := &data.User{Username: username, Email: username + "@example.com", Role: role}
	if err := user.Password.Set("pa55word"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.CreateUser(user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return user
}

func TestCreateReview(t *testing.T) {
	t.Run("creates a review for an existing title", func(t *testing.T) {
		s, repo := newTestService()
		title := seedTitle(t, repo, "Interstellar")
		author := seedUser(t, repo, "alice", data.RoleUser)
		review, err := s.CreateReview(title.ID, author, dto.CreateReviewRequestBody{Text: "great", Score: 9})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if review.Author != "alice" {
			t.Errorf("got author %q; want %q", review.Author, "alice")
		}
	})

	t.Run("unknown title is not found", func(t *testing.T) {
		s, repo := newTestService()
		author := seedUser(t, repo, "alice", data.RoleUser)
		_, err := s.CreateReview(42, author, dto.CreateReviewRequestBody{Text: "great", Score: 9})
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("got %v; want ErrRecordNotFound", err)
		}
	})

	t.Run("score outside 1 to 10 fails validation", func(t *testing.T) {
		s, repo := newTestService()
		title := seedTitle(t, repo, "Interstellar")
		author := seedUser(t, repo, "alice", data.RoleUser)
		for _, score := range []int8{0, 11} {
			_, err := s.CreateReview(title.ID, author, dto.CreateReviewRequestBody{Text: "great", Score: score})
			if !errors.Is(err, ErrFailedValidation) {
				t.Errorf("score %d: got %v; want a validation error", score, err)
			}
		}
	})

	t.Run("second review on the same title names the title", func(t *testing.T) {
		s, repo := newTestService()
		title := seedTitle(t, repo, "Interstellar")
		author := seedUser(t, repo, "alice", data.RoleUser)
		if _, err := s.CreateReview(title.ID, author, dto.CreateReviewRequestBody{Text: "great", Score: 9}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := s.CreateReview(title.ID, author, dto.CreateReviewRequestBody{Text: "changed my mind", Score: 3})
		if !errors.Is(err, ErrFailedValidation) {
			t.Fatalf("got %v; want a validation error", err)
		}
		if !strings.Contains(err.Error(), "Interstellar") {
			t.Errorf("error %q does not name the title", err.Error())
		}
	})
}

func TestReviewPermissions(t *testing.T) {
	setup := func(t *testing.T) (*service, *data.Title, *data.Review, *repoStub) {
		s, repo := newTestService()
		title := seedTitle(t, repo, "Interstellar")
		author := seedUser(t, repo, "alice", data.RoleUser)
		review, err := s.CreateReview(title.ID, author, dto.CreateReviewRequestBody{Text: "great", Score: 9})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return s, title, review, repo
	}
	text := "edited"

	t.Run("another ordinary user may not update", func(t *testing.T) {
		s, title, review, repo := setup(t)
		other := seedUser(t, repo, "bob", data.RoleUser)
		_, err := s.UpdateReview(title.ID, review.ID, other, dto.UpdateReviewRequestBody{Text: &text})
		if !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("got %v; want ErrNotPermitted", err)
		}
	})

	t.Run("another ordinary user may read", func(t *testing.T) {
		s, title, review, _ := setup(t)
		if _, err := s.GetReview(title.ID, review.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("the author may update", func(t *testing.T) {
		s, title, review, repo := setup(t)
		author, err := repo.GetUserByUsername("alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		updated, err := s.UpdateReview(title.ID, review.ID, author, dto.UpdateReviewRequestBody{Text: &text})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Text != text {
			t.Errorf("got text %q; want %q", updated.Text, text)
		}
	})

	t.Run("a moderator may delete", func(t *testing.T) {
		s, title, review, repo := setup(t)
		moderator := seedUser(t, repo, "mod", data.RoleModerator)
		if err := s.DeleteReview(title.ID, review.ID, moderator); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestNestedResolution(t *testing.T) {
	t.Run("review under the wrong title is not found", func(t *testing.T) {
		s, repo := newTestService()
		title := seedTitle(t, repo, "Interstellar")
		otherTitle := seedTitle(t, repo, "Alien")
		author := seedUser(t, repo, "alice", data.RoleUser)
		review, err := s.CreateReview(title.ID, author, dto.CreateReviewRequestBody{Text: "great", Score: 9})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = s.GetReview(otherTitle.ID, review.ID)
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("got %v; want ErrRecordNotFound", err)
		}
	})

	t.Run("comment through a mismatched review chain is not found", func(t *testing.T) {
		s, repo := newTestService()
		title := seedTitle(t, repo, "Interstellar")
		otherTitle := seedTitle(t, repo, "Alien")
		author := seedUser(t, repo, "alice", data.RoleUser)
		review, err := s.CreateReview(title.ID, author, dto.CreateReviewRequestBody{Text: "great", Score: 9})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		comment, err := s.CreateComment(title.ID, review.ID, author, dto.CreateCommentRequestBody{Text: "agreed"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = s.GetComment(otherTitle.ID, review.ID, comment.ID)
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("got %v; want ErrRecordNotFound", err)
		}
	})
}
