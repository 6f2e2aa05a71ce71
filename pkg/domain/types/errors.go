package types

import "github.com/m-mizutani/goerr/v2"

// Error tags used to map failures to client-facing status codes
var (
	ErrTagInvalidInput = goerr.NewTag("invalid_input")
	ErrTagNotFound     = goerr.NewTag("not_found")
	ErrTagForbidden    = goerr.NewTag("forbidden")
	ErrTagConflict     = goerr.NewTag("conflict")
)
