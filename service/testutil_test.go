package service

import (
	"io"
	"sync"

	"github.com/okenov/recensio/config"
	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/internal/jsonlog"
	"github.com/okenov/recensio/repository"
)

// repoStub is an in-memory repository used by the service tests. Only the
// behavior the tests exercise is faithful; everything else is a best-effort
// approximation of the real SQL layer.
type repoStub struct {
	mu         sync.Mutex
	nextID     int64
	users      map[string]*data.User
	categories map[string]*data.Category
	genres     map[string]*data.Genre
	titles     map[int64]*data.Title
	reviews    map[int64]*data.Review
	comments   map[int64]*data.Comment
}

func newRepoStub() *repoStub {
	return &repoStub{
		nextID:     1,
		users:      map[string]*data.User{},
		categories: map[string]*data.Category{},
		genres:     map[string]*data.Genre{},
		titles:     map[int64]*data.Title{},
		reviews:    map[int64]*data.Review{},
		comments:   map[int64]*data.Comment{},
	}
}

func (r *repoStub) id() int64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *repoStub) CreateUser(user *data.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = r.id()
	user.Version = 1
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *repoStub) GetUserByUsername(username string) (*data.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *repoStub) GetUserByUsernameAndEmail(username, email string) (*data.User, error) {
	r.mu.Lock()
	user, ok := r.users[username]
	r.mu.Unlock()
	if !ok || user.Email != email {
		return nil, repository.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *repoStub) UpdateUser(user *data.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, u := range r.users {
		if u.ID == user.ID {
			if u.Version != user.Version {
				return repository.ErrEditConflict
			}
			user.Version++
			clone := *user
			delete(r.users, name)
			r.users[user.Username] = &clone
			return nil
		}
	}
	return repository.ErrRecordNotFound
}

func (r *repoStub) DeleteUser(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(r.users, username)
	return nil
}

func (r *repoStub) GetAllUsers(search string, filters data.Filters) ([]*data.User, data.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []*data.User{}
	for _, u := range r.users {
		clone := *u
		users = append(users, &clone)
	}
	return users, data.CalculateMetadata(len(users), filters.Page, filters.PageSize), nil
}

func (r *repoStub) CreateCategory(category *data.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.Slug]; ok {
		return repository.ErrDuplicateRecord
	}
	category.ID = r.id()
	clone := *category
	r.categories[category.Slug] = &clone
	return nil
}

func (r *repoStub) GetCategoryBySlug(slug string) (*data.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[slug]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *repoStub) DeleteCategory(slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[slug]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(r.categories, slug)
	return nil
}

func (r *repoStub) GetAllCategories(search string, filters data.Filters) ([]*data.Category, data.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	categories := []*data.Category{}
	for _, c := range r.categories {
		clone := *c
		categories = append(categories, &clone)
	}
	return categories, data.CalculateMetadata(len(categories), filters.Page, filters.PageSize), nil
}

func (r *repoStub) CreateGenre(genre *data.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.genres[genre.Slug]; ok {
		return repository.ErrDuplicateRecord
	}
	genre.ID = r.id()
	clone := *genre
	r.genres[genre.Slug] = &clone
	return nil
}

func (r *repoStub) GetAllGenresBySlugs(slugs []string) ([]data.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	genres := []data.Genre{}
	for _, slug := range slugs {
		if genre, ok := r.genres[slug]; ok {
			genres = append(genres, *genre)
		}
	}
	return genres, nil
}

func (r *repoStub) DeleteGenre(slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.genres[slug]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(r.genres, slug)
	return nil
}

func (r *repoStub) GetAllGenres(search string, filters data.Filters) ([]*data.Genre, data.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	genres := []*data.Genre{}
	for _, g := range r.genres {
		clone := *g
		genres = append(genres, &clone)
	}
	return genres, data.CalculateMetadata(len(genres), filters.Page, filters.PageSize), nil
}

func (r *repoStub) CreateTitle(title *data.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	title.ID = r.id()
	title.Version = 1
	clone := *title
	r.titles[title.ID] = &clone
	return nil
}

func (r *repoStub) GetTitle(titleID int64) (*data.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	title, ok := r.titles[titleID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	clone := *title
	return &clone, nil
}

func (r *repoStub) UpdateTitle(title *data.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.titles[title.ID]
	if !ok || existing.Version != title.Version {
		return repository.ErrEditConflict
	}
	title.Version++
	clone := *title
	r.titles[title.ID] = &clone
	return nil
}

func (r *repoStub) DeleteTitle(titleID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.titles[titleID]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(r.titles, titleID)
	for id, review := range r.reviews {
		if review.TitleID == titleID {
			delete(r.reviews, id)
		}
	}
	return nil
}

func (r *repoStub) GetAllTitles(name, category, genre string, year int, filters data.Filters) ([]*data.Title, data.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	titles := []*data.Title{}
	for _, t := range r.titles {
		clone := *t
		titles = append(titles, &clone)
	}
	return titles, data.CalculateMetadata(len(titles), filters.Page, filters.PageSize), nil
}

func (r *repoStub) SetGenresForTitle(titleID int64, slugs []string) error {
	return nil
}

func (r *repoStub) GetAllGenresForTitle(titleID int64) ([]data.Genre, error) {
	return []data.Genre{}, nil
}

func (r *repoStub) CreateReview(review *data.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.TitleID == review.TitleID && existing.AuthorID == review.AuthorID {
			return repository.ErrDuplicateReview
		}
	}
	review.ID = r.id()
	review.Version = 1
	clone := *review
	r.reviews[review.ID] = &clone
	return nil
}

func (r *repoStub) GetReviewForTitle(titleID, reviewID int64) (*data.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[reviewID]
	if !ok || review.TitleID != titleID {
		return nil, repository.ErrRecordNotFound
	}
	clone := *review
	return &clone, nil
}

func (r *repoStub) UpdateReview(review *data.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.reviews[review.ID]
	if !ok || existing.Version != review.Version {
		return repository.ErrEditConflict
	}
	review.Version++
	clone := *review
	r.reviews[review.ID] = &clone
	return nil
}

func (r *repoStub) DeleteReview(reviewID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[reviewID]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(r.reviews, reviewID)
	return nil
}

func (r *repoStub) GetAllReviewsForTitle(titleID int64, filters data.Filters) ([]*data.Review, data.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reviews := []*data.Review{}
	for _, review := range r.reviews {
		if review.TitleID == titleID {
			clone := *review
			reviews = append(reviews, &clone)
		}
	}
	return reviews, data.CalculateMetadata(len(reviews), filters.Page, filters.PageSize), nil
}

func (r *repoStub) CreateComment(comment *data.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = r.id()
	comment.Version = 1
	clone := *comment
	r.comments[comment.ID] = &clone
	return nil
}

func (r *repoStub) GetCommentForReview(reviewID, commentID int64) (*data.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[commentID]
	if !ok || comment.ReviewID != reviewID {
		return nil, repository.ErrRecordNotFound
	}
	clone := *comment
	return &clone, nil
}

func (r *repoStub) UpdateComment(comment *data.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.comments[comment.ID]
	if !ok || existing.Version != comment.Version {
		return repository.ErrEditConflict
	}
	comment.Version++
	clone := *comment
	r.comments[comment.ID] = &clone
	return nil
}

func (r *repoStub) DeleteComment(commentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[commentID]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(r.comments, commentID)
	return nil
}

func (r *repoStub) GetAllCommentsForReview(reviewID int64, filters data.Filters) ([]*data.Comment, data.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comments := []*data.Comment{}
	for _, comment := range r.comments {
		if comment.ReviewID == reviewID {
			clone := *comment
			comments = append(comments, &clone)
		}
	}
	return comments, data.CalculateMetadata(len(comments), filters.Page, filters.PageSize), nil
}

// newTestService wires a service instance around a fresh repoStub.
func newTestService() (*service, *repoStub) {
	repo := newRepoStub()
	var cfg config.Config
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.CodeTTL = "30m"
	cfg.Auth.AccessTokenTTL = "24h"
	s := &service{
		config: cfg,
		wg:     &sync.WaitGroup{},
		logger: jsonlog.New(io.Discard, jsonlog.LevelFatal),
		repo:   repo,
	}
	return s, repo
}
