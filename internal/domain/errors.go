package domain

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies why an adapter fetch failed.
type FetchErrorKind int

const (
	// KindNetwork covers timeouts, DNS failures and connection resets.
	KindNetwork FetchErrorKind = iota
	// KindStatus is a non-2xx HTTP response.
	KindStatus
	// KindParse is a payload whose shape was not what the adapter expected.
	KindParse
)

// String returns a human-readable name for the kind.
func (k FetchErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError is returned by every data source adapter.
type FetchError struct {
	Source     string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: HTTP status %d", e.Source, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s error: %v", e.Source, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s error", e.Source, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NetworkError wraps a transport failure.
func NetworkError(source string, err error) *FetchError {
	return &FetchError{Source: source, Kind: KindNetwork, Err: err}
}

// StatusError reports a non-2xx response.
func StatusError(source string, code int) *FetchError {
	return &FetchError{Source: source, Kind: KindStatus, StatusCode: code}
}

// ParseError wraps a malformed payload.
func ParseError(source string, err error) *FetchError {
	return &FetchError{Source: source, Kind: KindParse, Err: err}
}

// IsFetchKind reports whether err is a FetchError of the given kind.
func IsFetchKind(err error, kind FetchErrorKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}

var (
	// ErrSessionExpired means the server answered with its login redirect.
	ErrSessionExpired = errors.New("session expired")

	// ErrBadCredentials is the login endpoint rejecting the account/password pair.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrLoginFailed is returned while a previous bad-credential result is still sticky.
	ErrLoginFailed = errors.New("login failed, waiting for new credentials")
)

// ConfigError marks a job whose required configuration is missing.
type ConfigError struct {
	Section string
	Field   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s.%s is required", e.Section, e.Field)
}
