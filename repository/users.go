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

type users interface {
	CreateUser(user *data.User) error
	GetUserByUsername(username string) (*data.User, error)
	GetUserByUsernameAndEmail(username, email string) (*data.User, error)
	UpdateUser(user *data.User) error
	DeleteUser(username string) error
	GetAllUsers(search string, filters data.Filters) ([]*data.User, data.Metadata, error)
}

// uniqueViolation maps a PostgreSQL unique-constraint violation to the
// sentinel error for the violated constraint, or returns nil if err is not a
// unique violation on a known constraint.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return ErrDuplicateUsername
	case "users_email_key":
		return ErrDuplicateEmail
	case "reviews_author_id_title_id_key":
		return ErrDuplicateReview
	default:
		return ErrDuplicateRecord
	}
}

// CreateUser inserts a new user record.
func (r *repository) CreateUser(user *data.User) error {
	query := `
		INSERT INTO users (username, email, first_name, last_name, bio, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version`
	args := []interface{}{user.Username, user.Email, user.FirstName, user.LastName, user.Bio, user.Role, user.Password.Hash}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Version,
	)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return err
	}
	return nil
}

func (r *repository) getUser(where string, arg ...interface{}) (*data.User, error) {
	query := `
		SELECT id, created_at, username, email, first_name, last_name, bio, role, password_hash, version
		FROM users
		WHERE ` + where
	var user data.User
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, arg...).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Bio,
		&user.Role,
		&user.Password.Hash,
		&user.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

// GetUserByUsername retrieves a user record by its username.
func (r *repository) GetUserByUsername(username string) (*data.User, error) {
	return r.getUser("username = $1", username)
}

// GetUserByUsernameAndEmail retrieves the user record matching the exact
// (username, email) pair. A username match with a different email is not
// found.
func (r *repository) GetUserByUsernameAndEmail(username, email string) (*data.User, error) {
	return r.getUser("username = $1 AND email = $2", username, email)
}

// UpdateUser updates a user record. The version column guards against
// concurrent edits, and a successful update always bumps the version, which
// invalidates any outstanding confirmation codes for the user.
func (r *repository) UpdateUser(user *data.User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, first_name = $3, last_name = $4, bio = $5, role = $6, password_hash = $7, version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version`
	args := []interface{}{
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.Password.Hash,
		user.ID,
		user.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.Version)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// DeleteUser deletes a user record by username. Reviews and comments
// authored by the user are removed by the cascading foreign keys.
func (r *repository) DeleteUser(username string) error {
	query := `
		DELETE FROM users
		WHERE username = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, username)
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

// GetAllUsers retrieves a paginated list of user records, optionally
// restricted to usernames containing the search term.
func (r *repository) GetAllUsers(search string, filters data.Filters) ([]*data.User, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, username, email, first_name, last_name, bio, role, version
		FROM users
		WHERE (username ILIKE '%%' || $1 || '%%' OR $1 = '')
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
	users := []*data.User{}
	for rows.Next() {
		var user data.User
		err := rows.Scan(
			&totalRecords,
			&user.ID,
			&user.CreatedAt,
			&user.Username,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.Bio,
			&user.Role,
			&user.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		users = append(users, &user)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return users, metadata, nil
}
