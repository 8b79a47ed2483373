package scoring

import "errors"

// ErrDecode indicates the uploaded bytes could not be parsed as an image.
var ErrDecode = errors.New("image cannot be decoded")

// ErrScoring indicates the classifier failed to produce a full result.
var ErrScoring = errors.New("inference failed")
