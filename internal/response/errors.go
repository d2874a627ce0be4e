package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrPermissionDenied   ErrCode = "PERMISSION_DENIED"
	ErrEmployeeAccessOnly ErrCode = "EMPLOYEE_ACCESS_ONLY"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"
	ErrNotAssignmentOwner ErrCode = "NOT_ASSIGNMENT_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Onboarding-specific ───────────────────────────────────────────
	ErrAlreadyAssigned  ErrCode = "FLOW_ALREADY_ASSIGNED"
	ErrFlowInactive     ErrCode = "FLOW_INACTIVE"
	ErrModuleLocked     ErrCode = "MODULE_LOCKED"
	ErrNotQuizModule    ErrCode = "NOT_A_QUIZ_MODULE"
	ErrQuizUndefined    ErrCode = "QUIZ_UNDEFINED"
	ErrPositionTaken    ErrCode = "POSITION_TAKEN"
	ErrModuleNotInFlow  ErrCode = "MODULE_NOT_IN_FLOW"
	ErrFlowHasNoModules ErrCode = "FLOW_HAS_NO_MODULES"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrInvalidCredentials:
		return "Invalid email or password."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrEmployeeAccessOnly:
		return "This resource is restricted to employees."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrNotAssignmentOwner:
		return "This assignment belongs to another user."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Onboarding-specific ───────────────────────────────────────────
	case ErrAlreadyAssigned:
		return "The user already has an active assignment for this flow."
	case ErrFlowInactive:
		return "This flow is not active."
	case ErrModuleLocked:
		return "Complete the previous module first."
	case ErrNotQuizModule:
		return "This module is not a quiz."
	case ErrQuizUndefined:
		return "This quiz module has no quiz definition."
	case ErrPositionTaken:
		return "Another module already uses this position."
	case ErrModuleNotInFlow:
		return "The module does not belong to this flow."
	case ErrFlowHasNoModules:
		return "This flow has no modules."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
