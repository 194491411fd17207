package crawler

import (
	"errors"
	"fmt"
)

// ErrAborted is returned by Run when the crawl ends in the Aborted state.
var ErrAborted = errors.New("crawl aborted")

// FetchError is a page that could not be downloaded: a transport failure,
// a timeout or a non-2xx status. It fails the page, not the crawl.
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MaterializeError is a skill that could not be written. A structural error
// means no page can be written and aborts the crawl.
type MaterializeError struct {
	URL        string
	Path       string
	Structural bool
	Err        error
}

func (e *MaterializeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("materialize %s to %s: %v", e.URL, e.Path, e.Err)
	}
	return fmt.Sprintf("materialize %s: %v", e.URL, e.Err)
}

func (e *MaterializeError) Unwrap() error {
	return e.Err
}
