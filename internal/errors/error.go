package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactive  Category = "reactive"
	CategoryMemo      Category = "memo"
	CategoryChildren  Category = "children"
	CategoryScheduler Category = "scheduler"
	CategoryProtocol  Category = "protocol"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// Violation is a registered error. Contract violations detected at runtime
// are raised with panic; configuration errors are returned.
type Violation struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the subsystem that detected the violation.
	Category Category

	// Message is a short description of the violation.
	Message string

	// Detail is a longer explanation of the violation.
	Detail string

	// Hint suggests how to fix the calling code.
	Hint string

	// Op is the specific operation and arguments that failed.
	Op string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (v *Violation) Error() string {
	msg := v.Message
	if v.Op != "" {
		msg += ": " + v.Op
	}
	if v.Code != "" {
		return fmt.Sprintf("silk %s: %s", v.Code, msg)
	}
	return "silk: " + msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (v *Violation) Unwrap() error {
	return v.Wrapped
}

// Is reports whether target is a violation with the same code.
func (v *Violation) Is(target error) bool {
	t, ok := target.(*Violation)
	if !ok {
		return false
	}
	return t.Code == v.Code
}

// WithOp records the failing operation.
func (v *Violation) WithOp(format string, args ...any) *Violation {
	v.Op = fmt.Sprintf(format, args...)
	return v
}

// WithHint overrides the registered hint.
func (v *Violation) WithHint(h string) *Violation {
	v.Hint = h
	return v
}

// Wrap wraps another error.
func (v *Violation) Wrap(err error) *Violation {
	v.Wrapped = err
	return v
}

// New creates a Violation from a registered error code.
func New(code string) *Violation {
	template, ok := registry[code]
	if !ok {
		return &Violation{
			Code:    code,
			Message: "unknown violation",
		}
	}
	return &Violation{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		Hint:     template.Hint,
	}
}

// Panic raises the registered violation for code, with the failing
// operation described by format and args.
func Panic(code string, format string, args ...any) {
	panic(New(code).WithOp(format, args...))
}

// AsViolation extracts a *Violation from a recovered panic value or an
// error chain.
func AsViolation(recovered any) (*Violation, bool) {
	switch r := recovered.(type) {
	case *Violation:
		return r, true
	case error:
		var v *Violation
		if stderrors.As(r, &v) {
			return v, true
		}
	}
	return nil, false
}

// Code returns the violation code of a recovered panic value, or "" if it
// is not a violation.
func Code(recovered any) string {
	if v, ok := AsViolation(recovered); ok {
		return v.Code
	}
	return ""
}
