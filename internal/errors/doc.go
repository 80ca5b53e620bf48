// Package errors provides the structured error type used for contract
// violations inside silk.
//
// silk distinguishes two kinds of failure:
//   - Violations: programmer errors such as a circular signal dependency, a
//     memo key reused within one frame, or an out-of-range index in a child
//     delta. These are never recoverable. The core panics with a *Violation
//     so the failure is loud and carries a stable code.
//   - Recoverable errors: protocol and transport errors are returned as
//     plain error values. Configuration errors are returned too, as
//     *Violation values with codes in the E140 range, so the CLI can print
//     them with a hint.
//
// # Error Codes
//
// Each violation has a code (e.g., "E101") that maps to a registered
// template with a short message, a detailed explanation and a hint.
//
// # Usage
//
//	errors.Panic("E110", "key %v reused within frame", key)
//
//	defer func() {
//	    if v, ok := errors.AsViolation(recover()); ok {
//	        fmt.Println(v.Format())
//	    }
//	}()
package errors
