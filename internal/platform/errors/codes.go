// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Status transition rejections
	CodeAdminCannotBeRestricted Code = "ADMIN_CANNOT_BE_RESTRICTED"
	CodeCannotLeaveRestricted   Code = "CANNOT_LEAVE_RESTRICTED"
	CodeCannotEnterRestricted   Code = "CANNOT_ENTER_RESTRICTED"

	// Admin invariant rejections
	CodeLastAdminProtected          Code = "LAST_ADMIN_PROTECTED"
	CodeRestrictedUserCannotBeAdmin Code = "RESTRICTED_USER_CANNOT_BE_ADMIN"

	// Input errors
	CodeStatusUnrecognized Code = "STATUS_UNRECOGNIZED"
	CodeAdminCountInvalid  Code = "ADMIN_COUNT_INVALID"
	CodeIDInvalid          Code = "ID_INVALID"
	CodeUserNameEmpty      Code = "USER_NAME_EMPTY"
	CodeUserEmailInvalid   Code = "USER_EMAIL_INVALID"
	CodeGroupNameEmpty     Code = "GROUP_NAME_EMPTY"
	CodeSectionNameEmpty   Code = "SECTION_NAME_EMPTY"
	CodeSectionTypeInvalid Code = "SECTION_TYPE_INVALID"
	CodeRequestInvalid     Code = "REQUEST_INVALID"

	// Caller errors
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// Membership workflow errors
	CodeUserNotPending         Code = "USER_NOT_PENDING"
	CodeUserNotAdmin           Code = "USER_NOT_ADMIN"
	CodeUserAlreadyAdmin       Code = "USER_ALREADY_ADMIN"
	CodeSectionNotViewable     Code = "SECTION_NOT_VIEWABLE"
	CodeSectionNotSubscribable Code = "SECTION_NOT_SUBSCRIBABLE"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
)

// IsPolicyRejection reports whether the code is one of the fixed
// membership policy reasons surfaced verbatim to end users.
func (c Code) IsPolicyRejection() bool {
	switch c {
	case CodeAdminCannotBeRestricted,
		CodeCannotLeaveRestricted,
		CodeCannotEnterRestricted,
		CodeLastAdminProtected,
		CodeRestrictedUserCannotBeAdmin:
		return true
	default:
		return false
	}
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeStatusUnrecognized,
		CodeAdminCountInvalid,
		CodeIDInvalid,
		CodeUserNameEmpty,
		CodeUserEmailInvalid,
		CodeGroupNameEmpty,
		CodeSectionNameEmpty,
		CodeSectionTypeInvalid,
		CodeRequestInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeAdminCannotBeRestricted,
		CodeCannotLeaveRestricted,
		CodeCannotEnterRestricted,
		CodeLastAdminProtected,
		CodeRestrictedUserCannotBeAdmin,
		CodeUserNotPending,
		CodeUserNotAdmin,
		CodeUserAlreadyAdmin,
		CodeSectionNotSubscribable:
		return codes.FailedPrecondition

	case CodeUnauthenticated:
		return codes.Unauthenticated

	case CodePermissionDenied,
		CodeSectionNotViewable:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAlreadyExists:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}
