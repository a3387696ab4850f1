/*
Package req binds HTTP request bodies into Go values and maps binding failures
to errs codes.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dmchat/internal/pkg/errs"
)

// MaxJSONBodySize caps a JSON request body. Image data URLs travel inside JSON,
// so the cap sits above the largest accepted image once base64 encoded.
const MaxJSONBodySize int64 = 8 << 20 // 8 MB

// BindJSON decodes the JSON request body into dst.
// Unknown fields, trailing content and bodies over MaxJSONBodySize are rejected.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
