package dto

import "github.com/okenov/recensio/data"

// CreateUserRequestBody defines a request body for the CreateUser service.
type CreateUserRequestBody struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Role      data.Role `json:"role"`
}

// UpdateUserRequestBody defines a request body for the UpdateUser service.
// Role is ignored on the self-service path.
type UpdateUserRequestBody struct {
	Username  *string    `json:"username"`
	Email     *string    `json:"email"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Bio       *string    `json:"bio"`
	Role      *data.Role `json:"role"`
}

// QsListUsers defines the query strings used for listing users.
type QsListUsers struct {
	Search  string
	Filters data.Filters
}
