package dto

// SignUpRequestBody defines a request body for the SignUp service.
type SignUpRequestBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateAccessTokenRequestBody defines a request body for the
// CreateAccessToken service.
type CreateAccessTokenRequestBody struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}
