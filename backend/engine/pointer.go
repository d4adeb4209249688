package engine

import (
	"errors"

	"clements/backend/models"
)

// SessionPointer is the one-slot store remembering which test is active for
// the learner's browsing session. It is passed into the progression API
// explicitly rather than read from ambient state.
type SessionPointer interface {
	ActiveTest() (uint, bool)
	SetActiveTest(id uint)
	Clear()
}

// ResumeActive loads the test the pointer refers to. A missing pointer, a
// vanished test or a test owned by someone else clears the pointer and
// reports ErrInvalidSessionState so the client starts clean.
func (e *Engine) ResumeActive(pointer SessionPointer, userID uint) (*models.Test, error) {
	testID, ok := pointer.ActiveTest()
	if !ok {
		return nil, ErrInvalidSessionState
	}

	test, err := e.LoadTest(userID, testID)
	if err != nil {
		pointer.Clear()
		if errors.Is(err, ErrUnauthorized) {
			return nil, ErrInvalidSessionState
		}
		return nil, err
	}
	return test, nil
}
