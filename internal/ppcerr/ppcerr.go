// Package ppcerr defines the error kinds raised across the translation
// pipeline and by emitted guest code at run time.
package ppcerr

import "fmt"

// Kind classifies a translation or run-time failure.
type Kind int

const (
	// TranslationGap marks a decoded instruction with no emitter support.
	TranslationGap Kind = iota
	// UnresolvedBranch marks a branch whose target could not be assigned
	// to any recovered function during control-flow recovery.
	UnresolvedBranch
	// UnresolvedIndirect marks a run-time indirect call through a nil
	// function-map slot.
	UnresolvedIndirect
	// BadImage marks an image the loader collaborator rejected.
	BadImage
	// ConfigError marks an unknown option or contradictory elision profile.
	ConfigError
	// HostIntrinsicMiss marks a vector primitive with no host equivalent
	// at the configured SIMD level.
	HostIntrinsicMiss
)

func (k Kind) String() string {
	switch k {
	case TranslationGap:
		return "TranslationGap"
	case UnresolvedBranch:
		return "UnresolvedBranch"
	case UnresolvedIndirect:
		return "UnresolvedIndirect"
	case BadImage:
		return "BadImage"
	case ConfigError:
		return "ConfigError"
	case HostIntrinsicMiss:
		return "HostIntrinsicMiss"
	default:
		return "Unknown"
	}
}

// Error is a translate-time or run-time failure of a known Kind, optionally
// anchored to a guest address and source file for diagnostics.
type Error struct {
	Kind    Kind
	Addr    uint32
	File    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s at %s:0x%08X: %s", e.Kind, e.Message, e.File, e.Addr, e.wrapped())
	}
	return fmt.Sprintf("%s: %s at 0x%08X: %s", e.Kind, e.Message, e.Addr, e.wrapped())
}

func (e *Error) wrapped() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error of the given kind anchored to a guest address.
func New(kind Kind, addr uint32, message string) *Error {
	return &Error{Kind: kind, Addr: addr, Message: message}
}

// Wrap constructs an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, addr uint32, message string, err error) *Error {
	return &Error{Kind: kind, Addr: addr, Message: message, Err: err}
}
