package model

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid refund request")
	ErrItemRequired   = errors.New("item id is required for an individual item refund")
)
