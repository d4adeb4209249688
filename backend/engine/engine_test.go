package engine_test

import (
	"fmt"
	"testing"
	"time"

	"clements/backend/engine"
	"clements/backend/models"
	"clements/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection so every query sees the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, displayname string) models.User {
	t.Helper()

	user := models.User{
		Name:         displayname,
		Displayname:  displayname,
		Email:        displayname + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createStudyArea(t *testing.T, db *gorm.DB, name string) models.StudyArea {
	t.Helper()

	area := models.StudyArea{Name: name}
	require.NoError(t, db.Create(&area).Error)
	return area
}

func createQuestion(t *testing.T, db *gorm.DB, areaID uint, difficulty, correctAnswer int) models.Question {
	t.Helper()

	question := models.Question{
		StudyAreaID:   areaID,
		Type:          models.QuestionTypeTMCQ,
		Difficulty:    difficulty,
		Text:          fmt.Sprintf("question for area %d", areaID),
		CorrectAnswer: correctAnswer,
	}
	require.NoError(t, question.SetOptions([]models.QuestionOption{
		{Text: "A"}, {Text: "B"}, {Text: "C"}, {Text: "D"},
	}))
	require.NoError(t, db.Create(&question).Error)
	return question
}

// recordAnswer seeds a historical answer, optionally backdated.
func recordAnswer(t *testing.T, db *gorm.DB, userID, questionID uint, correct bool, age time.Duration) {
	t.Helper()

	record := models.UserQuestion{
		UserID:     userID,
		QuestionID: questionID,
		Correct:    correct,
		Type:       models.QuestionTypeTMCQ,
	}
	require.NoError(t, db.Create(&record).Error)
	if age > 0 {
		require.NoError(t, db.Model(&record).
			Update("created_at", time.Now().Add(-age)).Error)
	}
}

func generate(t *testing.T, e *engine.Engine, p engine.GenerateParams) *models.Test {
	t.Helper()

	test, err := e.GenerateTest(p)
	require.NoError(t, err)
	return test
}
