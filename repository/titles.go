package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/okenov/recensio/data"
)

type titles interface {
	CreateTitle(title *data.Title) error
	GetTitle(titleID int64) (*data.Title, error)
	UpdateTitle(title *data.Title) error
	DeleteTitle(titleID int64) error
	GetAllTitles(name, category, genre string, year int, filters data.Filters) ([]*data.Title, data.Metadata, error)
	SetGenresForTitle(titleID int64, slugs []string) error
	GetAllGenresForTitle(titleID int64) ([]data.Genre, error)
}

// CreateTitle creates a title record. The genre associations are set
// separately via SetGenresForTitle.
func (r *repository) CreateTitle(title *data.Title) error {
	query := `
		INSERT INTO titles (name, year, description, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, version`
	var categoryID interface{}
	if title.Category != nil {
		categoryID = title.Category.ID
	}
	args := []interface{}{title.Name, title.Year, title.Description, categoryID}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.db.QueryRowContext(ctx, query, args...).Scan(&title.ID, &title.Version)
}

// GetTitle retrieves a title record together with its category and the mean
// review score. The rating is null when the title has no reviews.
func (r *repository) GetTitle(titleID int64) (*data.Title, error) {
	query := `
		SELECT titles.id, titles.name, titles.year, titles.description, titles.version,
			categories.name, categories.slug,
			(SELECT AVG(reviews.score) FROM reviews WHERE reviews.title_id = titles.id) AS rating
		FROM titles
		LEFT JOIN categories ON categories.id = titles.category_id
		WHERE titles.id = $1`
	var title data.Title
	var categoryName, categorySlug sql.NullString
	var rating sql.NullFloat64
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, titleID).Scan(
		&title.ID,
		&title.Name,
		&title.Year,
		&title.Description,
		&title.Version,
		&categoryName,
		&categorySlug,
		&rating,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if categorySlug.Valid {
		title.Category = &data.Category{Name: categoryName.String, Slug: categorySlug.String}
	}
	if rating.Valid {
		title.Rating = &rating.Float64
	}
	return &title, nil
}

// UpdateTitle updates a title record.
func (r *repository) UpdateTitle(title *data.Title) error {
	query := `
		UPDATE titles
		SET name = $1, year = $2, description = $3, category_id = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version`
	var categoryID interface{}
	if title.Category != nil {
		categoryID = title.Category.ID
	}
	args := []interface{}{
		title.Name,
		title.Year,
		title.Description,
		categoryID,
		title.ID,
		title.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&title.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// DeleteTitle deletes a title record. Reviews and comments under the title
// are removed by the cascading foreign keys.
func (r *repository) DeleteTitle(titleID int64) error {
	query := `
		DELETE FROM titles
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, titleID)
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

// GetAllTitles retrieves a paginated list of title records, filtered by name
// substring, category slug, genre slug and publication year. Each record
// carries its category and mean review score.
func (r *repository) GetAllTitles(name, category, genre string, year int, filters data.Filters) ([]*data.Title, data.Metadata, error) {
	// The join makes bare column names ambiguous; qualify everything except
	// the computed rating alias.
	sortColumn := filters.SortColumn()
	if sortColumn != "rating" {
		sortColumn = "titles." + sortColumn
	}
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), titles.id, titles.name, titles.year, titles.description, titles.version,
			categories.name, categories.slug,
			(SELECT AVG(reviews.score) FROM reviews WHERE reviews.title_id = titles.id) AS rating
		FROM titles
		LEFT JOIN categories ON categories.id = titles.category_id
		WHERE (titles.name ILIKE '%%' || $1 || '%%' OR $1 = '')
		AND (categories.slug = $2 OR $2 = '')
		AND (EXISTS (
			SELECT 1 FROM titles_genres
			INNER JOIN genres ON genres.id = titles_genres.genre_id
			WHERE titles_genres.title_id = titles.id AND genres.slug = $3
		) OR $3 = '')
		AND (titles.year = $4 OR $4 = 0)
		ORDER BY %s %s NULLS LAST, titles.id ASC
		LIMIT $5 OFFSET $6`,
		sortColumn, filters.SortDirection())
	args := []interface{}{name, category, genre, year, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	titles := []*data.Title{}
	for rows.Next() {
		var title data.Title
		var categoryName, categorySlug sql.NullString
		var rating sql.NullFloat64
		err := rows.Scan(
			&totalRecords,
			&title.ID,
			&title.Name,
			&title.Year,
			&title.Description,
			&title.Version,
			&categoryName,
			&categorySlug,
			&rating,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		if categorySlug.Valid {
			title.Category = &data.Category{Name: categoryName.String, Slug: categorySlug.String}
		}
		if rating.Valid {
			title.Rating = &rating.Float64
		}
		titles = append(titles, &title)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return titles, metadata, nil
}

// SetGenresForTitle replaces the genre associations of a title with the
// genres matching the given slugs.
func (r *repository) SetGenresForTitle(titleID int64, slugs []string) error {
	deleteQuery := `
		DELETE FROM titles_genres
		WHERE title_id = $1`
	insertQuery := `
		INSERT INTO titles_genres (title_id, genre_id)
		SELECT $1, id FROM genres WHERE slug = ANY($2)`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err = tx.ExecContext(ctx, deleteQuery, titleID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, insertQuery, titleID, pq.Array(slugs)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetAllGenresForTitle retrieves the genres associated with a title.
func (r *repository) GetAllGenresForTitle(titleID int64) ([]data.Genre, error) {
	query := `
		SELECT genres.id, genres.name, genres.slug
		FROM genres
		INNER JOIN titles_genres ON titles_genres.genre_id = genres.id
		WHERE titles_genres.title_id = $1
		ORDER BY genres.name ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, titleID)
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
