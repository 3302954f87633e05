// Package response defines the JSON error envelopes returned by the API.
package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const StatusError = "error"

// Response is the body of every failed request. Error names the failure kind
// and Message explains it to the caller.
type Response struct {
	Status  string            `json:"status"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details []ValidationError `json:"details,omitempty"`
}

// ValidationError describes a single rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	EmptyRequestBodyResponse = Response{
		Status:  StatusError,
		Error:   "Empty Request Body",
		Message: "Request body is empty. Please provide necessary data.",
	}

	BadRequestResponse = Response{
		Status:  StatusError,
		Error:   "Bad Request",
		Message: "Request body could not be parsed.",
	}

	InvalidURLResponse = Response{
		Status:  StatusError,
		Error:   "Invalid URL",
		Message: "The URL must be an absolute http or https URL.",
	}

	UnreachableURLResponse = Response{
		Status:  StatusError,
		Error:   "URL is not reachable",
		Message: "The URL did not respond with a success status.",
	}

	ResourceNotFoundResponse = Response{
		Status:  StatusError,
		Error:   "Shortened ID not found",
		Message: "No URL is registered under this short code.",
	}

	ServerErrorResponse = Response{
		Status:  StatusError,
		Error:   "Internal server error",
		Message: "An internal server error occurred. Please try again later.",
	}
)

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url", "http_url":
		return "invalid url"
	default:
		return "invalid value"
	}
}

// ValidationErrorResponse converts validator errors into an InvalidURLResponse
// with one detail per failed field.
func ValidationErrorResponse(err error) Response {
	resp := InvalidURLResponse

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			resp.Details = append(resp.Details, ValidationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return resp
}
