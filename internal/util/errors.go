package util

import "errors"

var (
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRegistered    = errors.New("email already registered")

	ErrUserNotFound      = errors.New("user not found")
	ErrCourseNotFound    = errors.New("course not found")
	ErrMaterialNotFound  = errors.New("material not found")
	ErrKeywordNotFound   = errors.New("keyword not found")
	ErrHierarchyNotFound = errors.New("hierarchy not found")
	ErrTestNotFound      = errors.New("test not found")
	ErrQuestionNotFound  = errors.New("question not found")

	// ErrExtraction marks a structurally malformed model response. Retrying
	// the same request will fail the same way.
	ErrExtraction = errors.New("no JSON keyword array found in model response")

	// ErrPipelineUnavailable marks a transport failure talking to the parser
	// or the model. Safe to retry.
	ErrPipelineUnavailable = errors.New("extraction pipeline unavailable")

	ErrKeywordCycle = errors.New("keyword parent change would create a cycle")
)
