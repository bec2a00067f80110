// Package errors provides error handling for ebacheck.
//
// It re-exports github.com/cockroachdb/errors (stack traces, wrapping,
// hints) and defines the fatal error classes of a validation run:
//
//   - ErrConfig: an option value is invalid; the run never starts.
//   - ErrModelAccess: the document model cannot be read safely (missing
//     locations, dangling references). This is a contract violation by the
//     host, not a diagnostic.
//   - ErrIncomplete: the run was cancelled between batches; the returned
//     report is partial.
//
// Rule violations and internal rule failures are never errors; they are
// diagnostics (see package diag).
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Fatal run classes. Wrap or Mark these so callers can use Is.
var (
	// ErrConfig indicates an invalid configuration value.
	ErrConfig = New("configuration error")

	// ErrModelAccess indicates the document model violates the input contract.
	ErrModelAccess = New("model access failure")

	// ErrIncomplete indicates the run stopped before all rules were evaluated.
	ErrIncomplete = New("validation incomplete")
)

// NewConfigError creates a configuration error with a formatted message.
func NewConfigError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrConfig)
}

// NewModelError creates a model-access error with a formatted message.
func NewModelError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrModelAccess)
}

// WrapModelError marks err as a model-access failure and adds context.
func WrapModelError(err error, context string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, context), ErrModelAccess)
}

// IsConfigError checks if an error is or wraps ErrConfig.
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrConfig)
}

// IsModelError checks if an error is or wraps ErrModelAccess.
func IsModelError(err error) bool {
	return err != nil && Is(err, ErrModelAccess)
}
