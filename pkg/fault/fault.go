package fault

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUniqueViolation     = errors.New("unique violation")
	ErrForeignKeyViolation = errors.New("restricted for deletion")

	ErrAlreadySurveyed = errors.New("join survey already submitted")
	ErrAlreadyDeleted  = errors.New("already deleted")
	ErrNestingTooDeep  = errors.New("replies to replies are not allowed")
	ErrAlreadySolved   = errors.New("inquiry already solved")

	ErrInvalidCredentials = errors.New("incorrect email or password")
)

type ErrorType int

const (
	ErrClient ErrorType = iota
	ErrInternal
	ErrValidation
	ErrConflict
	ErrMissing
	ErrNotAuthorized
	ErrUnsupportedSurveyType
)

type Fault struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Fault) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.typeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.typeString(), e.Message)
}

// Unwrap allows errors.Is and errors.As to work.
func (e *Fault) Unwrap() error {
	return e.Err
}

// typeString returns a human-readable representation of the error type.
func (e *Fault) typeString() string {
	switch e.Type {
	case ErrClient:
		return "ClientError"
	case ErrInternal:
		return "InternalError"
	case ErrValidation:
		return "ValidationError"
	case ErrConflict:
		return "ConflictError"
	case ErrMissing:
		return "NotFoundError"
	case ErrNotAuthorized:
		return "NotAuthorizedError"
	case ErrUnsupportedSurveyType:
		return "UnsupportedSurveyTypeError"
	default:
		return "UnknownError"
	}
}

// NewClientError creates a new client error.
func NewClientError(msg string, err error) error {
	return &Fault{
		Type:    ErrClient,
		Message: msg,
		Err:     err,
	}
}

// NewInternalError creates a new internal server error.
func NewInternalError(msg string, err error) error {
	return &Fault{
		Type:    ErrInternal,
		Message: msg,
		Err:     err,
	}
}

// Conflict reports an action the user must not retry, e.g. a second join survey.
func Conflict(msg string, err error) error {
	return &Fault{Type: ErrConflict, Message: msg, Err: err}
}

// NotFound never says why an entity is missing, so soft-deleted rows stay hidden.
func NotFound(msg string) error {
	return &Fault{Type: ErrMissing, Message: msg, Err: ErrNotFound}
}

func NotAuthorized(msg string) error {
	return &Fault{Type: ErrNotAuthorized, Message: msg}
}

func UnsupportedSurveyType(surveyType string) error {
	return &Fault{Type: ErrUnsupportedSurveyType, Message: fmt.Sprintf("unsupported survey type %q", surveyType)}
}

// NestingTooDeep is returned when a reply targets a comment that is itself a reply.
func NestingTooDeep(commentID int) error {
	return &Fault{
		Type:    ErrValidation,
		Message: fmt.Sprintf("comment %d is a reply", commentID),
		Err:     ErrNestingTooDeep,
	}
}

// IsClientError checks if an error is a client error.
func IsClientError(err error) bool {
	var ce *Fault
	if errors.As(err, &ce) {
		return ce.Type != ErrInternal
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInternalError checks if an error is an internal error.
func IsInternalError(err error) bool {
	var ce *Fault
	if errors.As(err, &ce) {
		return ce.Type == ErrInternal
	}
	return false
}

// Is reports whether err is a Fault of the given type.
func Is(err error, t ErrorType) bool {
	var ce *Fault
	if errors.As(err, &ce) {
		return ce.Type == t
	}
	return false
}

// HTTPStatus maps an error to the status code the transport should answer with.
func HTTPStatus(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity
	}

	var ce *Fault
	if !errors.As(err, &ce) {
		if errors.Is(err, ErrNotFound) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	}

	switch ce.Type {
	case ErrClient, ErrUnsupportedSurveyType:
		return http.StatusBadRequest
	case ErrValidation:
		return http.StatusUnprocessableEntity
	case ErrConflict:
		return http.StatusConflict
	case ErrMissing:
		return http.StatusNotFound
	case ErrNotAuthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
