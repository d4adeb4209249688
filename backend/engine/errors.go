package engine

import "errors"

var (
	// ErrNoQuestionsAvailable means the candidate pool was empty after
	// filtering; the caller should tell the user to widen their filters.
	ErrNoQuestionsAvailable = errors.New("no questions match the chosen filters")

	// ErrUnauthorized means the test belongs to a different user. The
	// request is rejected with no partial mutation.
	ErrUnauthorized = errors.New("test does not belong to the requesting user")

	// ErrInvalidSessionState means the session pointer or cursor no longer
	// matches stored state; the caller should clear the pointer and force a
	// clean restart.
	ErrInvalidSessionState = errors.New("no active test or corrupted session state")

	// ErrQuestionNotInTest means the submitted question is not part of the
	// test's generated question list.
	ErrQuestionNotInTest = errors.New("question is not part of this test")

	// ErrTestComplete means the test has already been finalized and is
	// read-only.
	ErrTestComplete = errors.New("test is already complete")
)
