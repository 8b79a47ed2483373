package report

import "errors"

// ErrQuotaExceeded indicates the generation provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("generation quota exceeded")

// ErrEmptyResponse indicates the provider call succeeded but returned no text.
var ErrEmptyResponse = errors.New("empty generation response")
