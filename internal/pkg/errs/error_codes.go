/*
Package errs provides the application error type and its business error codes.

Codes are grouped by range: 1xxx request handling, 2xxx messaging, 3xxx accounts and
authentication, 5xxx internal faults.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the caller exceeded its request rate.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Messaging Errors
const (
	// ErrMessageEmpty indicates a message with neither text nor image.
	ErrMessageEmpty = 2201

	// ErrMessageContentTooLong indicates message text over the length limit.
	ErrMessageContentTooLong = 2202

	// ErrImageInvalid indicates an image payload that is not an accepted data URL.
	ErrImageInvalid = 2301

	// ErrImageTooLarge indicates an image over the size limit.
	ErrImageTooLarge = 2302

	// ErrImageUploadDisabled indicates that no object storage is configured.
	ErrImageUploadDisabled = 2303
)

// 3xxx: Account and Authentication Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates an invalid or stale Proof-of-Work answer.
	ErrPowChallengeInvalid = 3002

	// ErrInvalidFullName indicates a missing or over-long full name.
	ErrInvalidFullName = 3101

	// ErrInvalidEmail indicates an email address that does not parse.
	ErrInvalidEmail = 3102

	// ErrInvalidPassword indicates a password outside the allowed length.
	ErrInvalidPassword = 3103

	// ErrEmailAlreadyExists indicates a signup with an email already registered.
	ErrEmailAlreadyExists = 3104

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = 3105

	// ErrProfilePicRequired indicates an update-profile call without a picture.
	ErrProfilePicRequired = 3106

	// ErrUnauthorized indicates a request without a token.
	ErrUnauthorized = 3201

	// ErrTokenExpired indicates a token past its expiry.
	ErrTokenExpired = 3202

	// ErrTokenInvalid indicates a token with a bad signature or structure.
	ErrTokenInvalid = 3203

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3301
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that object storage rejected an operation.
	ErrFileStorageFailed = 5001
)
