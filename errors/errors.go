// Package errors includes standard error helpers for the port layer
package errors

var (
	// InternalServerError is shown in place of errors that have been
	// hidden from the port interface
	InternalServerError = Error{500, "Internal server error"}
)

// Error is a port-interface visible error.
// If an error given to a port is not an Error, the port should hide it.
//
// Ports interpret Error however they choose. The CLI may just show the
// message, while HTTP maps codes onto statuses.
type Error struct {
	Code    int
	Message string
}

func (e Error) Error() string {
	return e.Message
}

// Invalid is a 400-class error for rejected requests
func Invalid(message string) Error {
	return Error{400, message}
}

// NotFound is a 404-class error for missing entities
func NotFound(message string) Error {
	return Error{404, message}
}

// Block hides non-Error errors
func Block(e error) Error {
	err, ok := e.(Error)
	if !ok {
		return InternalServerError
	}
	return err
}
