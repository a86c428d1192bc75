package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                     = "UNKNOWN"
	CodeAdminCannotBeRestricted     = "ADMIN_CANNOT_BE_RESTRICTED"
	CodeCannotLeaveRestricted       = "CANNOT_LEAVE_RESTRICTED"
	CodeCannotEnterRestricted       = "CANNOT_ENTER_RESTRICTED"
	CodeLastAdminProtected          = "LAST_ADMIN_PROTECTED"
	CodeRestrictedUserCannotBeAdmin = "RESTRICTED_USER_CANNOT_BE_ADMIN"
	CodeStatusUnrecognized          = "STATUS_UNRECOGNIZED"
	CodeAdminCountInvalid           = "ADMIN_COUNT_INVALID"
	CodeIDInvalid                   = "ID_INVALID"
	CodeUserNameEmpty               = "USER_NAME_EMPTY"
	CodeUserEmailInvalid            = "USER_EMAIL_INVALID"
	CodeGroupNameEmpty              = "GROUP_NAME_EMPTY"
	CodeSectionNameEmpty            = "SECTION_NAME_EMPTY"
	CodeSectionTypeInvalid          = "SECTION_TYPE_INVALID"
	CodeRequestInvalid              = "REQUEST_INVALID"
	CodeUnauthenticated             = "UNAUTHENTICATED"
	CodePermissionDenied            = "PERMISSION_DENIED"
	CodeUserNotPending              = "USER_NOT_PENDING"
	CodeUserNotAdmin                = "USER_NOT_ADMIN"
	CodeUserAlreadyAdmin            = "USER_ALREADY_ADMIN"
	CodeSectionNotViewable          = "SECTION_NOT_VIEWABLE"
	CodeSectionNotSubscribable      = "SECTION_NOT_SUBSCRIBABLE"
	CodeNotFound                    = "NOT_FOUND"
	CodeAlreadyExists               = "ALREADY_EXISTS"
)

var enUSMessages = map[Code]string{
	CodeUnknown:                     "Something went wrong. Please try again.",
	CodeAdminCannotBeRestricted:     "Administrators cannot be given a restricted membership status. Revoke admin rights first.",
	CodeCannotLeaveRestricted:       "Only an administrator can change a {{.Status}} membership status.",
	CodeCannotEnterRestricted:       "The {{.Status}} membership status can only be assigned by an administrator.",
	CodeLastAdminProtected:          "At least one administrator must remain.",
	CodeRestrictedUserCannotBeAdmin: "Members with status {{.Status}} cannot become administrators.",
	CodeStatusUnrecognized:          "Unknown membership status {{.Status}}.",
	CodeAdminCountInvalid:           "Administrator count is invalid.",
	CodeIDInvalid:                   "The {{.Field}} identifier is invalid.",
	CodeUserNameEmpty:               "First and last name are required.",
	CodeUserEmailInvalid:            "Email address is invalid.",
	CodeGroupNameEmpty:              "Access group name is required.",
	CodeSectionNameEmpty:            "Section name is required.",
	CodeSectionTypeInvalid:          "Unknown section type {{.Type}}.",
	CodeRequestInvalid:              "The request could not be read.",
	CodeUnauthenticated:             "Sign in to continue.",
	CodePermissionDenied:            "You do not have permission to perform this action.",
	CodeUserNotPending:              "This member has no pending membership request.",
	CodeUserNotAdmin:                "This member is not an administrator.",
	CodeUserAlreadyAdmin:            "This member is already an administrator.",
	CodeSectionNotViewable:          "You cannot view this section.",
	CodeSectionNotSubscribable:      "You cannot subscribe to this section.",
	CodeNotFound:                    "The requested record was not found.",
	CodeAlreadyExists:               "The record already exists.",
}
