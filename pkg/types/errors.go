package types

import "errors"

// ErrEmptyContent is returned when a snippet has no content
var ErrEmptyContent = errors.New("content cannot be empty")
