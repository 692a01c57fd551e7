package data

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okenov/recensio/internal/validator"
)

// Confirmation codes are stateless: the code embeds its expiry time and an
// HMAC over the user's current state (username, version and password hash)
// keyed with the server secret. Nothing is stored; any change to the user row
// bumps the version and implicitly invalidates every outstanding code, which
// is also how a code becomes single-use — redeeming it bumps the version.

const codeMACSize = 20

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateConfirmationCode derives a time-boxed confirmation code for user.
func GenerateConfirmationCode(user *User, secret []byte, ttl time.Duration) string {
	expiry := time.Now().Add(ttl).Unix()
	mac := confirmationCodeMAC(user, secret, expiry)
	return strconv.FormatInt(expiry, 36) + "." + codeEncoding.EncodeToString(mac)
}

// VerifyConfirmationCode reports whether code is an unexpired confirmation
// code for the user's current state. Comparison is constant time.
func VerifyConfirmationCode(user *User, secret []byte, code string) bool {
	expiryPart, macPart, found := strings.Cut(code, ".")
	if !found {
		return false
	}
	expiry, err := strconv.ParseInt(expiryPart, 36, 64)
	if err != nil || time.Now().Unix() > expiry {
		return false
	}
	got, err := codeEncoding.DecodeString(macPart)
	if err != nil {
		return false
	}
	return hmac.Equal(got, confirmationCodeMAC(user, secret, expiry))
}

func confirmationCodeMAC(user *User, secret []byte, expiry int64) []byte {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s|%d|%x|%d", user.Username, user.Version, user.Password.Hash, expiry)
	return mac.Sum(nil)[:codeMACSize]
}

func ValidateConfirmationCode(v *validator.Validator, code string) {
	v.Check(code != "", "confirmation_code", "must be provided")
	v.Check(len(code) <= 64, "confirmation_code", "must not be more than 64 bytes long")
}
