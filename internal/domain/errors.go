package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidShot      = errors.New("invalid shot template")
	ErrPrecondition     = errors.New("precondition failed")
	ErrSynthesisFailure = errors.New("synthesis failure")
	ErrQualityRejected  = errors.New("quality below threshold")
	ErrAlreadyTerminal  = errors.New("job already terminal")
)
