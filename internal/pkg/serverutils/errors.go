package serverutils

import "fmt"

// Error taxonomy shared by the REST layer and the collaboration protocol.
// All four are caught at the handling boundary and converted to a single
// error reply to the originating caller; none close a connection.

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

func NewPermissionError(message string) *PermissionError {
	return &PermissionError{Message: message}
}

// ProtocolError signals a collaboration message arriving out of
// state-machine order or referencing a mismatched document.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

func NewProtocolError(message string) *ProtocolError {
	return &ProtocolError{Message: message}
}

type MalformedMessageError struct {
	Message string
}

func (e *MalformedMessageError) Error() string {
	return e.Message
}

func NewMalformedMessageError(message string) *MalformedMessageError {
	return &MalformedMessageError{Message: message}
}

// ValidationError wraps request validation failures so the error
// middleware can map them to 400 instead of 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
