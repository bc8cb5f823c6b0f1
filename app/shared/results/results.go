// Package results carries the success-or-failure payload pair every service
// operation returns. Business failures travel as payloads here, not as
// errors; errors are reserved for infrastructure problems.
package results

// OperationResult holds either a success or a failure payload. Exactly one
// side is expected to be set by a completed operation.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// IsSuccess reports whether the operation produced a success payload.
func (r OperationResult[S, F]) IsSuccess() bool { return r.Success != nil }

// IsFailure reports whether the operation produced a failure payload.
func (r OperationResult[S, F]) IsFailure() bool { return r.Failure != nil }

// Succeed wraps a success payload.
func Succeed[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// Fail wraps a failure payload.
func Fail[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}
