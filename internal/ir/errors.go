package ir

import "errors"

var (
	ErrInvalidConnectionOption = errors.New("invalid connection option")
	ErrInvalidDeclaration      = errors.New("invalid declaration")
	ErrDuplicateComponent      = errors.New("duplicate component")
	ErrDuplicatePart           = errors.New("duplicate part")
)
