package data

import (
	"testing"

	"github.com/okenov/recensio/internal/validator"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		valid    bool
	}{
		{"plain", "capulet", true},
		{"with punctuation", "user.name+tag@host", true},
		{"reserved me", "me", false},
		{"reserved me uppercase", "ME", false},
		{"reserved me mixed case", "mE", false},
		{"empty", "", false},
		{"spaces", "two words", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidateUsername(v, tt.username)
			if v.Valid() != tt.valid {
				t.Errorf("ValidateUsername(%q) valid = %v; want %v (errors: %v)", tt.username, v.Valid(), tt.valid, v.Errors)
			}
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAdmin.AtLeast(RoleModerator) {
		t.Error("admin must imply moderator rights")
	}
	if !RoleModerator.AtLeast(RoleUser) {
		t.Error("moderator must imply user rights")
	}
	if RoleUser.AtLeast(RoleModerator) {
		t.Error("user must not hold moderator rights")
	}
	if !RoleUser.AtLeast(RoleUser) {
		t.Error("a tier must satisfy itself")
	}
}

func TestUserCanModify(t *testing.T) {
	author := &User{ID: 1, Role: RoleUser}
	other := &User{ID: 2, Role: RoleUser}
	moderator := &User{ID: 3, Role: RoleModerator}
	admin := &User{ID: 4, Role: RoleAdmin}

	const authorID = 1
	if !author.CanModify(authorID) {
		t.Error("author must be able to modify their own record")
	}
	if other.CanModify(authorID) {
		t.Error("unrelated user must not modify another user's record")
	}
	if !moderator.CanModify(authorID) {
		t.Error("moderator must be able to modify any record")
	}
	if !admin.CanModify(authorID) {
		t.Error("admin must be able to modify any record")
	}
}
