package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSpec         = errors.New("invalid certificate request")
	ErrReferenceNotFound   = errors.New("reference not found")
	ErrEmployeeNotFound    = &ReferenceError{Ref: "employee"}
	ErrTierNotFound        = &ReferenceError{Ref: "tier"}
	ErrTemplateNotFound    = &ReferenceError{Ref: "template"}
	ErrRenderFailed        = errors.New("certificate creation failed: render")
	ErrPersistFailed       = errors.New("certificate creation failed: persist")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrDispatchFailed      = errors.New("email dispatch failed")
)

// ReferenceError reports a missing employee, tier or template. It matches
// ErrReferenceNotFound and the per-kind sentinel of the same Ref.
type ReferenceError struct {
	Ref string
	ID  int64
}

func (e *ReferenceError) Error() string {
	if e.ID == 0 {
		return e.Ref + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.Ref, e.ID)
}

func (e *ReferenceError) Is(target error) bool {
	if target == ErrReferenceNotFound {
		return true
	}
	t, ok := target.(*ReferenceError)
	return ok && t.Ref == e.Ref
}

func missing(kind *ReferenceError, id int64) error {
	return &ReferenceError{Ref: kind.Ref, ID: id}
}

// MissingEmployee, MissingTier and MissingTemplate build a ReferenceError carrying the offending ID.
func MissingEmployee(id int64) error { return missing(ErrEmployeeNotFound, id) }
func MissingTier(id int64) error     { return missing(ErrTierNotFound, id) }
func MissingTemplate(id int64) error { return missing(ErrTemplateNotFound, id) }
