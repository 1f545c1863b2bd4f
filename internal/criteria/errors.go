package criteria

import "errors"

var (
	ErrUnauthorized     = errors.New("administrator capability required")
	ErrCriteriaNotFound = errors.New("criteria not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInactive = errors.New("category is inactive")
)
