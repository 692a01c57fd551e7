package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/okenov/recensio/data"
)

type genres interface {
	CreateGenre(genre *data.Genre) error
	GetAllGenresBySlugs(slugs []string) ([]data.Genre, error)
	DeleteGenre(slug string) error
	GetAllGenres(search string, filters data.Filters) ([]*data.Genre, data.Metadata, error)
}

// CreateGenre creates a genre record.
func (r *repository) CreateGenre(genre *data.Genre) error {
	query := `
		INSERT INTO genres (name, slug)
		VALUES ($1, $2)
		RETURNING id`
	args := []interface{}{genre.Name, genre.Slug}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&genre.ID)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// GetAllGenresBySlugs retrieves the genre records for a set of slugs. The
// result may be shorter than the input if some slugs do not exist.
func (r *repository) GetAllGenresBySlugs(slugs []string) ([]data.Genre, error) {
	query := `
		SELECT id, name, slug
		FROM genres
		WHERE slug = ANY($1)
		ORDER BY name ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, pq.Array(slugs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	genres := []data.Genre{}
	for rows.Next() {
		var genre data.Genre
		err := rows.Scan(
			&genre.ID,
			&genre.Name,
			&genre.Slug,
		)
		if err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}

// DeleteGenre deletes a genre record and its title associations.
func (r *repository) DeleteGenre(slug string) error {
	query := `
		DELETE FROM genres
		WHERE slug = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, slug)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetAllGenres retrieves a paginated list of genre records, optionally
// restricted to names or slugs containing the search term.
func (r *repository) GetAllGenres(search string, filters data.Filters) ([]*data.Genre, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, name, slug
		FROM genres
		WHERE (name ILIKE '%%' || $1 || '%%' OR slug ILIKE '%%' || $1 || '%%' OR $1 = '')
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`,
		filters.SortColumn(), filters.SortDirection())
	args := []interface{}{search, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	genres := []*data.Genre{}
	for rows.Next() {
		var genre data.Genre
		err := rows.Scan(
			&totalRecords,
			&genre.ID,
			&genre.Name,
			&genre.Slug,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		genres = append(genres, &genre)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return genres, metadata, nil
}
