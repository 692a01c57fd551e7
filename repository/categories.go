package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okenov/recensio/data"
)

type categories interface {
	CreateCategory(category *data.Category) error
	GetCategoryBySlug(slug string) (*data.Category, error)
	DeleteCategory(slug string) error
	GetAllCategories(search string, filters data.Filters) ([]*data.Category, data.Metadata, error)
}

// CreateCategory creates a category record.
func (r *repository) CreateCategory(category *data.Category) error {
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id`
	args := []interface{}{category.Name, category.Slug}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&category.ID)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// GetCategoryBySlug retrieves a category record by its slug.
func (r *repository) GetCategoryBySlug(slug string) (*data.Category, error) {
	query := `
		SELECT id, name, slug
		FROM categories
		WHERE slug = $1`
	var category data.Category
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &category, nil
}

// DeleteCategory deletes a category record. Titles referencing the category
// keep existing with a null category via the SET NULL foreign key.
func (r *repository) DeleteCategory(slug string) error {
	query := `
		DELETE FROM categories
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

// GetAllCategories retrieves a paginated list of category records, optionally
// restricted to names or slugs containing the search term.
func (r *repository) GetAllCategories(search string, filters data.Filters) ([]*data.Category, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, name, slug
		FROM categories
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
	categories := []*data.Category{}
	for rows.Next() {
		var category data.Category
		err := rows.Scan(
			&totalRecords,
			&category.ID,
			&category.Name,
			&category.Slug,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		categories = append(categories, &category)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return categories, metadata, nil
}
