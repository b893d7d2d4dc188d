package service

import "errors"

// Domain errors surfaced to handlers. NotAvailable errors are wrapped with a
// human-readable reason (e.g. the remaining wait), so match with errors.Is and
// show err.Error() to the caller.
var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrExamNotAvailable = errors.New("exam is not available for taking")
	ErrAttemptNotFound  = errors.New("exam attempt not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrHostNotFound     = errors.New("host not found")
	ErrAttemptTerminal  = errors.New("exam attempt is already finished")
	ErrExamActive       = errors.New("an active exam cannot be deleted")
)
