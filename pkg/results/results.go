// Package results separates domain outcomes from infrastructure errors in
// service return values.
package results

// OperationResult carries either a success payload or a domain failure.
// Infrastructure errors travel alongside it as a plain error.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a success payload.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult wraps a domain failure.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

// IsSuccess reports whether the result holds a success payload.
func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether the result holds a domain failure.
func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}

// Map converts the success payload, leaving failures untouched.
func Map[S any, F any, T any](r OperationResult[S, F], fn func(S) T) OperationResult[T, F] {
	if r.Success != nil {
		return SuccessResult[T, F](fn(*r.Success))
	}
	return OperationResult[T, F]{Failure: r.Failure}
}
