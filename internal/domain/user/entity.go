package user

import (
	"strings"

	"currencies-app/internal/domain/validation"
)

// User represents a user entity in the system.
type User struct {
	id   int64  // id is the unique identifier for the user
	name string // name is the non-empty display name
}

// Record is an unvalidated stored user row.
type Record struct {
	ID   int64
	Name string
}

// New validates the name and builds a User.
func New(id int64, name string) (*User, error) {
	u := &User{id: id}
	if err := u.SetName(name); err != nil {
		return nil, err
	}
	return u, nil
}

// FromRecord validates a stored row and builds a User from it.
func FromRecord(r Record) (*User, error) {
	return New(r.ID, r.Name)
}

// ID returns the user identifier.
func (u *User) ID() int64 { return u.id }

// Name returns the display name.
func (u *User) Name() string { return u.name }

// SetName replaces the display name. Blank names are rejected.
func (u *User) SetName(name string) error {
	if err := validation.Field("name", strings.TrimSpace(name), "required"); err != nil {
		return err
	}
	u.name = name
	return nil
}
