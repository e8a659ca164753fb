package api

import (
	"fmt"
	"strings"
)

// HTTPError is returned for any non-2xx response that has no more specific
// error kind. The status-specific errors below unwrap to it.
type HTTPError struct {
	StatusCode int
	Body       []byte
	// Name and Message are taken from the API error body when it has one.
	Name    string
	Message string
	// EdgeBlocked is set for 429 responses that did not pass through the API
	// router (no Via header, or a non-JSON body), i.e. an edge provider block.
	EdgeBlocked bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("yandex music: unexpected status code %d", e.StatusCode) + e.detail()
}

func (e *HTTPError) detail() string {
	var parts []string
	if e.Name != "" {
		parts = append(parts, e.Name)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if len(parts) == 0 {
		return ""
	}
	return ": " + strings.Join(parts, ": ")
}

type ForbiddenError struct {
	HTTPError
}

func (e *ForbiddenError) Error() string {
	return "yandex music: forbidden" + e.detail()
}

func (e *ForbiddenError) Unwrap() error {
	return &e.HTTPError
}

type ServerError struct {
	HTTPError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("yandex music: server error %d", e.StatusCode) + e.detail()
}

func (e *ServerError) Unwrap() error {
	return &e.HTTPError
}

// NotFoundError is returned for 404 responses, and for lookups or searches the
// API answered with an empty result. In the latter case StatusCode is zero and
// IDs or Query name what was asked for.
type NotFoundError struct {
	HTTPError
	IDs   []string
	Query string
}

func (e *NotFoundError) Error() string {
	switch {
	case len(e.IDs) > 0:
		return "yandex music: not found: " + strings.Join(e.IDs, ",")
	case e.Query != "":
		return fmt.Sprintf("yandex music: nothing found for %q", e.Query)
	default:
		return "yandex music: not found" + e.detail()
	}
}

func (e *NotFoundError) Unwrap() error {
	if e.StatusCode == 0 {
		return nil
	}
	return &e.HTTPError
}

// RevisionConflictError is returned when a playlist edit was submitted with a
// revision the server no longer considers current.
type RevisionConflictError struct {
	HTTPError
	Owner    string
	Kind     int
	Revision int
}

func (e *RevisionConflictError) Error() string {
	return fmt.Sprintf("yandex music: playlist %s:%d revision %d is outdated", e.Owner, e.Kind, e.Revision)
}

func (e *RevisionConflictError) Unwrap() error {
	return &e.HTTPError
}

type TemplateError struct {
	Template string
	Name     string
	Reason   string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("route template %q: placeholder %q %s", e.Template, e.Name, e.Reason)
}

type ParamError struct {
	Key   string
	Value any
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q has unsupported value type %T", e.Key, e.Value)
}
