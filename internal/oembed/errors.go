package oembed

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is returned when an endpoint or page cannot be reached or answers with a non-200 status.
	ErrNetwork = errors.New("network error")

	// ErrNoProviderMatch is returned when no registered provider claims a URL.
	ErrNoProviderMatch = errors.New("no provider matches URL")

	// ErrMalformedResponse is returned when an endpoint answers with an unparseable body or without embeddable HTML.
	ErrMalformedResponse = errors.New("malformed oEmbed response")

	// ErrDiscoveryFailed is returned when a page declares no usable oEmbed discovery link.
	ErrDiscoveryFailed = errors.New("oEmbed discovery failed")
)

// FetchError records which URL failed and why. It unwraps to one of the
// sentinel errors above so callers branch with errors.Is.
type FetchError struct {
	Kind   error
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	msg := e.Kind.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s (%s)", msg, e.URL)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fetchErr(kind error, url string, err error) *FetchError {
	return &FetchError{Kind: kind, URL: url, Err: err}
}

// statusReason describes the oEmbed-specific meaning of an error status.
func statusReason(status int) error {
	switch status {
	case 404:
		return errors.New("provider has no embed for this URL")
	case 401:
		return errors.New("embed is private")
	case 501:
		return errors.New("provider does not implement the requested format")
	}
	return nil
}
