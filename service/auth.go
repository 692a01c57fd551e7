package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/mailer"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/repository"
)

type auth interface {
	SignUp(requestBody dto.SignUpRequestBody) (*data.User, error)
	CreateAccessToken(requestBody dto.CreateAccessTokenRequestBody) (string, error)
	GetUserForAccessToken(token string) (*data.User, error)
}

// SignUp registers a user and emails them a confirmation code. Signing up
// again with the exact same username and email pair does not create a second
// record; it issues a fresh code for the existing user instead.
func (s *service) SignUp(requestBody dto.SignUpRequestBody) (*data.User, error) {
	v := validator.New()
	data.ValidateUsername(v, requestBody.Username)
	data.ValidateEmail(v, requestBody.Email)
	if !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	user, err := s.repo.GetUserByUsernameAndEmail(requestBody.Username, requestBody.Email)
	switch {
	case err == nil:
		// Exact pair already registered: fall through and re-issue a code.
	case errors.Is(err, repository.ErrRecordNotFound):
		user = &data.User{
			Username: requestBody.Username,
			Email:    requestBody.Email,
			Role:     data.RoleUser,
		}
		if err := user.Password.Set(randomPassword()); err != nil {
			return nil, err
		}
		if err := s.repo.CreateUser(user); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicateUsername):
				v.AddError("username", "a user with this username already exists")
				return nil, s.failedValidation(v.Errors)
			case errors.Is(err, repository.ErrDuplicateEmail):
				v.AddError("email", "a user with this email address already exists")
				return nil, s.failedValidation(v.Errors)
			default:
				return nil, err
			}
		}
	default:
		return nil, err
	}
	s.sendConfirmationCode(user)
	return user, nil
}

// sendConfirmationCode generates a confirmation code for user and emails it
// in a background goroutine, so that a slow or failing mail transport never
// affects the response. The user record is committed either way.
func (s *service) sendConfirmationCode(user *data.User) {
	ttl := parseDuration(s.config.Auth.CodeTTL, 30*time.Minute)
	code := data.GenerateConfirmationCode(user, []byte(s.config.Auth.Secret), ttl)
	s.background(func() {
		payload := map[string]string{
			"username":         user.Username,
			"ttl":              ttl.String(),
			"confirmationCode": code,
		}
		mailer := mailer.New(s.config.SMTP.Host, s.config.SMTP.Port, s.config.SMTP.Username, s.config.SMTP.Password, s.config.SMTP.Sender)
		err := mailer.Send(user.Email, "confirmation_code.tmpl", payload)
		if err != nil {
			s.logger.PrintError(err, nil)
		}
	})
}

// CreateAccessToken exchanges a confirmation code for a signed access token.
// Redeeming a code bumps the user's version, which invalidates the code and
// every other one issued before it.
func (s *service) CreateAccessToken(requestBody dto.CreateAccessTokenRequestBody) (string, error) {
	v := validator.New()
	v.Check(requestBody.Username != "", "username", "must be provided")
	data.ValidateConfirmationCode(v, requestBody.ConfirmationCode)
	if !v.Valid() {
		return "", s.failedValidation(v.Errors)
	}
	user, err := s.repo.GetUserByUsername(requestBody.Username)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return "", ErrRecordNotFound
		default:
			return "", err
		}
	}
	if !data.VerifyConfirmationCode(user, []byte(s.config.Auth.Secret), requestBody.ConfirmationCode) {
		return "", ErrInvalidCredentials
	}
	err = s.repo.UpdateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return "", ErrEditConflict
		default:
			return "", err
		}
	}
	ttl := parseDuration(s.config.Auth.AccessTokenTTL, 24*time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Auth.Secret))
}

// GetUserForAccessToken verifies a signed access token and retrieves the user
// it was issued to.
func (s *service) GetUserForAccessToken(token string) (*data.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.Auth.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidAccessToken
	}
	user, err := s.repo.GetUserByUsername(claims.Subject)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrInvalidAccessToken
		default:
			return nil, err
		}
	}
	return user, nil
}
