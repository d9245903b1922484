package srs

import "errors"

var (
	ErrCardNotFound = errors.New("card not found")
	// ErrDeckNotFound is also returned for decks owned by another user.
	ErrDeckNotFound = errors.New("deck not found")
	ErrWordNotFound = errors.New("word not found")
	ErrInvalidGrade = errors.New("invalid grade")
)
