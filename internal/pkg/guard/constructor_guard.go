// Package guard provides a defensive pattern that ensures value objects and
// entities are only created through their designated constructor functions.
//
// By embedding a ConstructorGuard in a struct, code can detect whether the
// struct was properly initialized through its constructor or created as a
// zero value, keeping domain objects in a valid state at all times.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when a nil error is
// passed as the validation error. Validation always fails with a meaningful
// message even if no specific error is provided.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as having been built through its
// constructor. The zero value is "not constructed" and fails validation.
//
// Example:
//
//	type Token struct {
//	    value string
//	    guard guard.ConstructorGuard
//	}
//
//	func NewToken(value string) (Token, error) {
//	    if value == "" {
//	        return Token{}, errors.New("value is required")
//	    }
//	    return Token{value: value, guard: guard.NewConstructorGuard()}, nil
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a guard in the constructed state. Call it only
// from within a constructor function.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil if the guarded object was properly constructed.
// Otherwise it returns validationError, or ErrDefaultConstructorGuard when
// validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
