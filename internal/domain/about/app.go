// Package about holds the static author and application metadata shown on
// the site. It is built once from configuration and never persisted.
package about

import "currencies-app/internal/domain/validation"

// Author describes who built the application.
type Author struct {
	Name  string `json:"name" validate:"required"`
	Group string `json:"group" validate:"required"`
}

// App describes the running application.
type App struct {
	Name    string `json:"name" validate:"required"`
	Version string `json:"version" validate:"required"`
	Author  Author `json:"author"`
}

// NewAuthor validates and builds an Author.
func NewAuthor(name, group string) (*Author, error) {
	a := &Author{Name: name, Group: group}
	if err := validation.Struct(a); err != nil {
		return nil, err
	}
	return a, nil
}

// NewApp validates and builds an App.
func NewApp(name, version string, author Author) (*App, error) {
	a := &App{Name: name, Version: version, Author: author}
	if err := validation.Struct(a); err != nil {
		return nil, err
	}
	return a, nil
}
