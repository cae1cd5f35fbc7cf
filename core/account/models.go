// Package account manages the student's identity: signing in and out of the
// remote backend and keeping the local session (tokens, cached profile) in
// step with it.
package account

import (
	"github.com/trezcool/ratiba/core"
)

// Login contains the credentials to authenticate with. One of Username or
// Email is required.
type Login struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

func (l *Login) Validate() error {
	l.Username = core.CleanString(l.Username, true /* lower */)
	l.Email = core.CleanString(l.Email, true /* lower */)
	return core.Validate.Struct(l)
}

// Identifier returns whichever of username or email was provided.
func (l *Login) Identifier() string {
	if l.Username != "" {
		return l.Username
	}
	return l.Email
}

// NewAccount contains information needed to register a new student account.
type NewAccount struct {
	Username        string `json:"username" validate:"required,min=6,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	DisplayName     string `json:"display_name"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (na *NewAccount) Validate() error {
	na.Username = core.CleanString(na.Username, true /* lower */)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.DisplayName = core.CleanString(na.DisplayName)
	return core.Validate.Struct(na)
}

// UpdateProfile defines what information may be modified on an existing account.
type UpdateProfile struct {
	DisplayName string `json:"display_name" validate:"required"`
}

func (up *UpdateProfile) Validate() error {
	up.DisplayName = core.CleanString(up.DisplayName)
	return core.Validate.Struct(up)
}
