/*
Package errs provides the application error type and its business error codes.

This file registers the client-facing message and HTTP status of every code. NewError
looks codes up here; a code missing from the map is reported as ErrUnknown.
*/
package errs

import "net/http"

// errorMap holds the user-facing message and HTTP status of every error code.
// Entries without a Status answer with 400 Bad Request.
var errorMap = map[int]CustomError{
	// 1xxx
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message must contain text or an image."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrImageInvalid:          {Code: ErrImageInvalid, Message: "Unsupported image."},
	ErrImageTooLarge:         {Code: ErrImageTooLarge, Message: "Image is too large."},
	ErrImageUploadDisabled:   {Code: ErrImageUploadDisabled, Message: "Image uploads are not available."},

	// 3xxx
	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Message: "Verification required. Please try again."},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Message: "Verification failed. Please try again."},
	ErrInvalidFullName:      {Code: ErrInvalidFullName, Message: "Full name is required."},
	ErrInvalidEmail:         {Code: ErrInvalidEmail, Message: "Invalid email address."},
	ErrInvalidPassword:      {Code: ErrInvalidPassword, Message: "Password must be at least 6 characters."},
	ErrEmailAlreadyExists:   {Code: ErrEmailAlreadyExists, Message: "Email already exists."},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Invalid credentials."},
	ErrProfilePicRequired:   {Code: ErrProfilePicRequired, Message: "Profile pic is required."},

	ErrUnauthorized: {Code: ErrUnauthorized, Message: "Unauthorized - No Token Provided.", Status: http.StatusUnauthorized},
	ErrTokenExpired: {Code: ErrTokenExpired, Message: "Unauthorized - Token Expired.", Status: http.StatusUnauthorized},
	ErrTokenInvalid: {Code: ErrTokenInvalid, Message: "Unauthorized - Invalid Token.", Status: http.StatusUnauthorized},
	ErrUserNotFound: {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},

	// 5xxx
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusInternalServerError},
}
