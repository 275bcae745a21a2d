package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPortfolio   = errors.New("invalid portfolio")
	ErrNoQuote            = errors.New("no quote available")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrUnsupportedFormat  = errors.New("unsupported format")
)
