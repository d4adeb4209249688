package engine_test

import (
	"testing"

	"clements/backend/engine"
	"clements/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPracticeQuestionSkipsCleared(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "practice-skip")
	area := createStudyArea(t, db, "Practice Area")

	cleared1 := createQuestion(t, db, area.ID, 2, 0)
	cleared2 := createQuestion(t, db, area.ID, 2, 0)
	remaining := createQuestion(t, db, area.ID, 2, 0)
	recordAnswer(t, db, user.ID, cleared1.ID, true, 0)
	recordAnswer(t, db, user.ID, cleared2.ID, true, 0)

	// Only one question is left uncleared, so the pick is deterministic.
	for i := 0; i < 5; i++ {
		question, _, err := e.NextPracticeQuestion(user.ID, area.ID)
		require.NoError(t, err)
		assert.Equal(t, remaining.ID, question.ID)
	}
}

func TestNextPracticeQuestionFallsBackWhenAreaCleared(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "practice-fallback")
	area := createStudyArea(t, db, "Cleared Area")

	q := createQuestion(t, db, area.ID, 2, 0)
	recordAnswer(t, db, user.ID, q.ID, true, 0)

	question, prior, err := e.NextPracticeQuestion(user.ID, area.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, question.ID)
	require.NotNil(t, prior)
	assert.True(t, prior.Correct)
}

func TestNextPracticeQuestionEmptyArea(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "practice-empty")
	area := createStudyArea(t, db, "Barren Area")

	_, _, err := e.NextPracticeQuestion(user.ID, area.ID)
	assert.ErrorIs(t, err, engine.ErrNoQuestionsAvailable)
}

func TestSubmitPracticeAnswerAppendsRows(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "practice-append")
	area := createStudyArea(t, db, "Append Area")
	question := createQuestion(t, db, area.ID, 3, 0)

	first, err := e.SubmitPracticeAnswer(user.ID, question.ID, 1)
	require.NoError(t, err)
	assert.False(t, first.Correct)
	assert.Equal(t, 0, first.CorrectAnswer)

	second, err := e.SubmitPracticeAnswer(user.ID, question.ID, 0)
	require.NoError(t, err)
	assert.True(t, second.Correct)

	// Practice attempts accumulate history rather than overwriting it.
	var rows []models.UserQuestion
	require.NoError(t, db.Where("user_id = ? AND question_id = ?", user.ID, question.ID).
		Find(&rows).Error)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Nil(t, row.TestID)
	}

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 2, reloaded.QuestionsTotal)
	assert.Equal(t, 1, reloaded.QuestionsCorrect)
	assert.Equal(t, 1, reloaded.QuestionsIncorrect)
	assert.Equal(t, 1, reloaded.ProgressGrade3)
}

func TestSubmitPracticeAnswerUnknownQuestion(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "practice-unknown")

	_, err := e.SubmitPracticeAnswer(user.ID, 9999, 0)
	assert.ErrorIs(t, err, engine.ErrQuestionNotInTest)
}
