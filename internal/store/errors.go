package store

import "errors"

// Sentinel errors returned by repository operations.
var (
	ErrStoryNotFound = errors.New("story not found")
	ErrEmptyTitle    = errors.New("story title must not be empty")
)
