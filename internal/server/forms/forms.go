// Package forms validates user input before it reaches the services.
package forms

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophtodo/internal/common"
)

const (
	MaxUsernameLen    = 30
	MinPasswordLen    = 6
	MaxPasswordLen    = 72
	MaxTodoTitleLen   = 40
	MinTodoImportance = 1
	MaxTodoImportance = 5
)

// UserForm is a registration request.
type UserForm struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// Normalize trims surrounding whitespace from the username and email.
func (f *UserForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

// Validate checks the form and returns an error wrapping
// common.ErrorValidation that names the first bad field.
func (f *UserForm) Validate() error {
	switch n := utf8.RuneCountInString(f.Username); {
	case n == 0:
		return invalid("username is required")
	case n > MaxUsernameLen:
		return invalid("username must be at most %d characters", MaxUsernameLen)
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return invalid("email is not a valid address")
	}
	if err := ValidatePassword(f.Password); err != nil {
		return err
	}
	if f.Password2 != "" && f.Password2 != f.Password {
		return invalid("passwords do not match")
	}
	return nil
}

// ValidatePassword applies the password length rules.
func ValidatePassword(p string) error {
	if len(p) < MinPasswordLen {
		return invalid("password must be at least %d characters", MinPasswordLen)
	}
	if len(p) > MaxPasswordLen {
		return invalid("password must be at most %d bytes", MaxPasswordLen)
	}
	return nil
}

// TodoForm is the editable part of a todo.
type TodoForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Importance  int    `json:"importance"`
}

func (f *TodoForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
}

func (f *TodoForm) Validate() error {
	switch n := utf8.RuneCountInString(f.Title); {
	case n == 0:
		return invalid("title is required")
	case n > MaxTodoTitleLen:
		return invalid("title must be at most %d characters", MaxTodoTitleLen)
	}
	if f.Importance < MinTodoImportance || f.Importance > MaxTodoImportance {
		return invalid("importance must be between %d and %d", MinTodoImportance, MaxTodoImportance)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}
