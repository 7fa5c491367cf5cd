package domain

import "errors"

var (
	ErrPollNotFound       = errors.New("poll not found")
	ErrInvalidPollID      = errors.New("invalid poll id")
	ErrInvalidCompetitor  = errors.New("competitor does not belong to the poll")
	ErrMissingVoteFields  = errors.New("pollId and competitorId are required")
	ErrMissingVoter       = errors.New("voter id is required")
	ErrVoterIDTooLong     = errors.New("voter id is too long")
	ErrAlreadyVoted       = errors.New("you have already voted in this poll")
	ErrVotingClosed       = errors.New("voting for this poll has closed")
	ErrPostNotFound       = errors.New("post not found")
	ErrInvalidPostID      = errors.New("invalid post id")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminExists        = errors.New("admin already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrInternal           = errors.New("internal server error")
)

// ValidationError reports malformed or missing input on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
)

// KindOf classifies err for transport adapters. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &ve),
		errors.Is(err, ErrInvalidPollID),
		errors.Is(err, ErrInvalidPostID),
		errors.Is(err, ErrInvalidCompetitor),
		errors.Is(err, ErrMissingVoteFields),
		errors.Is(err, ErrMissingVoter),
		errors.Is(err, ErrVoterIDTooLong),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrPasswordTooLong):
		return KindValidation
	case errors.Is(err, ErrAlreadyVoted),
		errors.Is(err, ErrVotingClosed),
		errors.Is(err, ErrAdminExists):
		return KindConflict
	case errors.Is(err, ErrPollNotFound),
		errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrAdminNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken):
		return KindUnauthorized
	default:
		return KindInternal
	}
}
