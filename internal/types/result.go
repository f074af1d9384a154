package types

import (
	"encoding/json"
	"net/http"
)

// ErrorKind names the category of a failed Result.
type ErrorKind string

const (
	DatabaseError        ErrorKind = "DatabaseError"
	InternalServerError  ErrorKind = "InternalServerError"
	InvalidAPIInputError ErrorKind = "InvalidAPIInputError"
	NotFoundError        ErrorKind = "NotFoundError"
)

// unknownErrorDescription is used when a failure value has no readable text.
const unknownErrorDescription = "Unknown error type"

// Message is the human-readable summary for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case DatabaseError:
		return "A database error was found."
	case InvalidAPIInputError:
		return "Invalid input values."
	case NotFoundError:
		return "Record not found."
	default:
		return "An unexpected server error was found."
	}
}

// HTTPStatus maps the kind to the status code the route layer answers with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case InvalidAPIInputError:
		return http.StatusUnprocessableEntity
	case NotFoundError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the AppError code matching the kind.
func (k ErrorKind) Code() ErrorCode {
	switch k {
	case DatabaseError:
		return ErrCodeInternalDB
	case InvalidAPIInputError:
		return ErrCodeValidationInvalidInput
	case NotFoundError:
		return ErrCodeNotFoundDuty
	default:
		return ErrCodeInternalUnexpected
	}
}

// QueryError is the tagged failure carried by a Result.
type QueryError struct {
	Name        ErrorKind `json:"name"`
	Description string    `json:"description"`
}

func (e *QueryError) Error() string {
	return string(e.Name) + ": " + e.Description
}

// Result is the outcome of a transactional operation. Exactly one of Data and
// Err is meaningful: a nil Err means success, even when Data is empty.
type Result struct {
	Data []Duty
	Err  *QueryError
}

// Success wraps rows in a successful Result. A nil slice becomes empty so
// that callers always see a list.
func Success(rows []Duty) Result {
	if rows == nil {
		rows = []Duty{}
	}
	return Result{Data: rows}
}

// Failure builds a failed Result of the given kind.
func Failure(kind ErrorKind, description string) Result {
	return Result{Err: &QueryError{Name: kind, Description: description}}
}

// OK reports whether the Result is a success.
func (r Result) OK() bool {
	return r.Err == nil
}

// First returns the first row of a successful Result.
func (r Result) First() (Duty, bool) {
	if r.Err != nil || len(r.Data) == 0 {
		return Duty{}, false
	}
	return r.Data[0], true
}

// MarshalJSON encodes the Result as {"data": rows} or {"name", "description"}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}
	data := r.Data
	if data == nil {
		data = []Duty{}
	}
	return json.Marshal(struct {
		Data []Duty `json:"data"`
	}{Data: data})
}

// DescribeFailure extracts readable text from an arbitrary failure value:
// an error yields its message, a non-empty string yields itself, anything
// else yields a fixed placeholder. It never panics.
func DescribeFailure(v any) (desc string) {
	defer func() {
		if recover() != nil {
			desc = unknownErrorDescription
		}
	}()
	switch f := v.(type) {
	case error:
		return f.Error()
	case string:
		if f == "" {
			return unknownErrorDescription
		}
		return f
	default:
		return unknownErrorDescription
	}
}
