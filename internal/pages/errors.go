package pages

import "fmt"

// FetchError reports a failed page image download.
type FetchError struct {
	Page int
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to download page %d from %s: %v", e.Page, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ConvertError reports a failed image normalization.
type ConvertError struct {
	Page int
	Path string
	Err  error
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("failed to convert page %d (%s): %v", e.Page, e.Path, e.Err)
}

func (e *ConvertError) Unwrap() error { return e.Err }
