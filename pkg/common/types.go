package common

import (
	"errors"
	"fmt"
)

// ScrapedItem is the metadata the remote service collected for one submitted URL
type ScrapedItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// SubmitRequest is the body of a submission
type SubmitRequest struct {
	URL string `json:"url"`
}

// SubmitStatus is the outcome of a successful submission
type SubmitStatus int

const (
	// StatusCreated means the URL was new and has been scraped and stored
	StatusCreated SubmitStatus = iota + 1
	// StatusAlreadyExists means the service already knew the URL
	StatusAlreadyExists
)

func (s SubmitStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusAlreadyExists:
		return "already exists"
	default:
		return fmt.Sprintf("SubmitStatus(%d)", int(s))
	}
}

var (
	// ErrEmptyInput is returned when a submission has no URL. No request is made.
	ErrEmptyInput = errors.New("url is empty")

	// ErrTransport wraps failures fetching the list of items
	ErrTransport = errors.New("transport error")

	// ErrSubmit wraps failures submitting a URL
	ErrSubmit = errors.New("submit failed")
)
