package images

import "errors"

// ErrNotFound indicates no image record exists with the requested id.
var ErrNotFound = errors.New("image record not found")

// ErrNotOwner indicates the acting user does not own the image record.
var ErrNotOwner = errors.New("not authorized for this image record")

// ErrValidation indicates bad or missing input; wrap it with detail.
var ErrValidation = errors.New("invalid input")
