package scraper

import "errors"

// ErrNotFound means the profile page loaded but no day cells ever appeared:
// either the user has no contributions or the username does not exist. The
// page gives no way to tell these apart, so both map to the same error.
var ErrNotFound = errors.New("no contributions found or user does not exist")

// NavigationError means the page failed to load at all.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string { return "navigate " + e.URL + ": " + e.Err.Error() }

func (e *NavigationError) Unwrap() error { return e.Err }

// TimeoutError means a scrape step ran past its wait bound.
type TimeoutError struct {
	Stage string
	Err   error
}

func (e *TimeoutError) Error() string { return e.Stage + " timed out: " + e.Err.Error() }

func (e *TimeoutError) Unwrap() error { return e.Err }
