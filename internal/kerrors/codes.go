package kerrors

// Error codes for the middle-end.
//
// Error code ranges mirror the taxonomy in the governing specification's
// error-handling design:
//
// E0001-E0099: IR structural errors
// E0100-E0199: Type errors
// E0200-E0299: Borrow conflicts
// E0300-E0399: Lifetime errors (drop placement)
// E0400-E0499: Unknown-name errors
// E0500-E0599: Internal invariant failures
// E0800-E0899: Warnings

const (
	// IR structural errors (E0001-E0099)

	ErrorMissingTerminator  = "E0001"
	ErrorBadSuccessorIndex  = "E0002"
	ErrorDuplicateBlockLabel = "E0003"
	ErrorBadArity           = "E0004"

	// Type errors (E0100-E0199)

	ErrorSubtypeFailure      = "E0100"
	ErrorArityMismatch       = "E0101"
	ErrorUnknownField        = "E0102"
	ErrorUnresolvedInferred  = "E0103"
	ErrorInvalidCast         = "E0104"
	ErrorNoCommonSupertype   = "E0105"

	// Borrow conflicts (E0200-E0299)

	ErrorMoveFromMoved         = "E0200"
	ErrorMoveFromBorrowed      = "E0201"
	ErrorBorrowWhileExclusive  = "E0202"
	ErrorExclusiveWhileShared  = "E0203"
	ErrorUseOfMoved            = "E0204"

	// Lifetime errors (E0300-E0399)

	ErrorDropPlacement = "E0300"

	// Unknown-name errors (E0400-E0499)

	ErrorUnknownName = "E0400"

	// Internal invariant failures (E0500-E0599)

	ErrorInternalInvariant = "E0500"

	// Warnings (E0800-E0899)

	WarningUnreachableCode = "W0800"
)

// GetErrorDescription returns a human-readable description of the error code.
func GetErrorDescription(code string) string {
	switch code {
	case ErrorMissingTerminator:
		return "basic block has no terminator"
	case ErrorBadSuccessorIndex:
		return "terminator references a block position out of range"
	case ErrorDuplicateBlockLabel:
		return "block label is not unique within the function"
	case ErrorBadArity:
		return "instruction has the wrong number of arguments or references for its op"
	case ErrorSubtypeFailure:
		return "expression type is not a subtype of the expected type"
	case ErrorArityMismatch:
		return "call, init, or return passes the wrong number of values"
	case ErrorUnknownField:
		return "field does not exist on the accessed type"
	case ErrorUnresolvedInferred:
		return "type inference failed to resolve a destination's type"
	case ErrorInvalidCast:
		return "cast source is not a subtype of the cast target"
	case ErrorNoCommonSupertype:
		return "no common supertype exists for the operands of a binary operation"
	case ErrorMoveFromMoved:
		return "value has already been moved"
	case ErrorMoveFromBorrowed:
		return "value is currently borrowed and cannot be moved"
	case ErrorBorrowWhileExclusive:
		return "value is exclusively borrowed and cannot be shared-borrowed"
	case ErrorExclusiveWhileShared:
		return "value is shared-borrowed and cannot be exclusively borrowed"
	case ErrorUseOfMoved:
		return "use of a moved value"
	case ErrorDropPlacement:
		return "no deterministic point exists to free this allocation"
	case ErrorUnknownName:
		return "reference to a name not defined in the current basic block"
	case ErrorInternalInvariant:
		return "internal invariant violated"
	case WarningUnreachableCode:
		return "code is unreachable"
	default:
		return "unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error.
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}

// GetErrorCategory returns the taxonomy category of the error based on its code.
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "IRStructural"
	case code >= "E0100" && code < "E0200":
		return "TypeError"
	case code >= "E0200" && code < "E0300":
		return "BorrowConflict"
	case code >= "E0300" && code < "E0400":
		return "LifetimeError"
	case code >= "E0400" && code < "E0500":
		return "UnknownName"
	case code >= "E0500" && code < "E0600":
		return "InternalInvariant"
	case code >= "E0800" && code < "E0900":
		return "Warning"
	default:
		return "Unknown"
	}
}
