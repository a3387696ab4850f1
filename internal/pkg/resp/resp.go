/*
Package resp provides helpers that build and send the HTTP JSON envelope shared by every endpoint.

Every response has the shape {"code": <int>, "message": <string>, "data": <any>}. A code of 0
means success; any other value is a business code from the errs package, and the HTTP status
is taken from the matching errs.CustomError.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
)

// JSONResponse is the envelope written for every REST response.
// Handlers never write bare payloads; they go through RespondSuccess, RespondCreated or RespondError.
type JSONResponse struct {
	// Code is the business status code (0 for success, otherwise a code from the errs package).
	Code int `json:"code"`

	// Message is the client-facing status description or error message.
	Message string `json:"message"`

	// Data is the optional payload, omitted from the JSON when nil.
	Data any `json:"data,omitempty"`
}

// RespondJSON marshals payload and writes it with the given HTTP status.
// It sets the JSON content type and nosniff headers. If marshalling fails the
// error is logged and a plain 500 is sent instead.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	_, _ = w.Write(response)
}

// RespondSuccess sends data inside a success envelope with HTTP 200 OK.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondCreated sends data inside a success envelope with HTTP 201 Created.
// It is used by endpoints that persist a new resource, such as signup and send.
func RespondCreated(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusCreated, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondError sends the code and message of customErr with its mapped HTTP status.
// A nil customErr is answered as ErrUnknown so a handler bug never produces an empty body.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}
