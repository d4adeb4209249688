package engine_test

import (
	"testing"
	"time"

	"clements/backend/engine"
	"clements/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTestSelectsFromPool(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-pool")

	areaA := createStudyArea(t, db, "Intervals")
	areaB := createStudyArea(t, db, "Cadences")
	areaC := createStudyArea(t, db, "Texture")

	pool := make(map[uint]struct{})
	for i := 0; i < 8; i++ {
		q := createQuestion(t, db, areaA.ID, 1+i%3, 0)
		pool[q.ID] = struct{}{}
	}
	for i := 0; i < 7; i++ {
		q := createQuestion(t, db, areaB.ID, 1+i%3, 0)
		pool[q.ID] = struct{}{}
	}
	// Outside the requested topics, must never be picked.
	createQuestion(t, db, areaC.ID, 2, 0)

	test, err := e.GenerateTest(engine.GenerateParams{
		UserID:       user.ID,
		TopicIDs:     []uint{areaA.ID, areaB.ID},
		NumQuestions: 10,
	})
	require.NoError(t, err)

	ids := test.QuestionIDs()
	assert.Len(t, ids, 10)
	assert.Equal(t, 10, test.NumQuestions)
	assert.Equal(t, 10, test.MarksAvailable)
	assert.Equal(t, 0, test.CurrentQuestion)
	assert.False(t, test.Complete)

	seen := make(map[uint]struct{})
	for _, id := range ids {
		_, inPool := pool[id]
		assert.True(t, inPool, "question %d outside requested topics", id)
		_, dup := seen[id]
		assert.False(t, dup, "question %d selected twice", id)
		seen[id] = struct{}{}
	}
}

func TestGenerateTestPoolSmallerThanRequested(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-small")
	area := createStudyArea(t, db, "Harmony")

	for i := 0; i < 3; i++ {
		createQuestion(t, db, area.ID, 2, 0)
	}

	test := generate(t, e, engine.GenerateParams{
		UserID:       user.ID,
		TopicIDs:     []uint{area.ID},
		NumQuestions: 10,
	})

	assert.Len(t, test.QuestionIDs(), 3)
	assert.Equal(t, 3, test.NumQuestions)
	assert.Equal(t, 3, test.MarksAvailable)
}

func TestGenerateTestNoQuestionsAvailable(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-empty")
	area := createStudyArea(t, db, "Empty Topic")

	_, err := e.GenerateTest(engine.GenerateParams{
		UserID:       user.ID,
		TopicIDs:     []uint{area.ID},
		NumQuestions: 5,
	})
	assert.ErrorIs(t, err, engine.ErrNoQuestionsAvailable)
}

func TestGenerateTestDifficultyBand(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-band")
	area := createStudyArea(t, db, "Melody")

	easy := make(map[uint]struct{})
	for d := 1; d <= 5; d++ {
		q := createQuestion(t, db, area.ID, d, 0)
		if d <= 2 {
			easy[q.ID] = struct{}{}
		}
	}

	test := generate(t, e, engine.GenerateParams{
		UserID:       user.ID,
		TopicIDs:     []uint{area.ID},
		Difficulty:   "easy",
		NumQuestions: 5,
	})

	ids := test.QuestionIDs()
	assert.Len(t, ids, 2)
	for _, id := range ids {
		_, ok := easy[id]
		assert.True(t, ok, "question %d exceeds the easy band", id)
	}
}

func TestGenerateTestExplicitBoundsOverrideBand(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-bounds")
	area := createStudyArea(t, db, "Rhythm")

	wanted := make(map[uint]struct{})
	for d := 1; d <= 5; d++ {
		q := createQuestion(t, db, area.ID, d, 0)
		if d >= 2 && d <= 4 {
			wanted[q.ID] = struct{}{}
		}
	}

	test := generate(t, e, engine.GenerateParams{
		UserID:        user.ID,
		TopicIDs:      []uint{area.ID},
		Difficulty:    "easy",
		MinDifficulty: 2,
		MaxDifficulty: 4,
		NumQuestions:  5,
	})

	ids := test.QuestionIDs()
	assert.Len(t, ids, 3)
	for _, id := range ids {
		_, ok := wanted[id]
		assert.True(t, ok)
	}
}

func TestGenerateTestExcludesRecentAnswers(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-recent")
	area := createStudyArea(t, db, "Tonality")

	answered := createQuestion(t, db, area.ID, 2, 0)
	fresh := createQuestion(t, db, area.ID, 2, 0)
	recordAnswer(t, db, user.ID, answered.ID, true, 30*24*time.Hour)

	test := generate(t, e, engine.GenerateParams{
		UserID:       user.ID,
		TopicIDs:     []uint{area.ID},
		NumQuestions: 5,
	})

	ids := test.QuestionIDs()
	assert.Equal(t, []uint{fresh.ID}, ids)
	assert.NotContains(t, ids, answered.ID)
}

func TestGenerateTestIncludePreviousCorrect(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-include-correct")
	area := createStudyArea(t, db, "Keys")

	answered := createQuestion(t, db, area.ID, 2, 0)
	recordAnswer(t, db, user.ID, answered.ID, true, 30*24*time.Hour)

	test := generate(t, e, engine.GenerateParams{
		UserID:                 user.ID,
		TopicIDs:               []uint{area.ID},
		NumQuestions:           5,
		IncludePreviousCorrect: true,
	})

	assert.Contains(t, test.QuestionIDs(), answered.ID)
}

func TestGenerateTestOldCorrectAnswersReturn(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-old-correct")
	area := createStudyArea(t, db, "Modulation")

	// Correctly answered four months ago: outside the history window, so
	// it comes back into rotation without any flag.
	answered := createQuestion(t, db, area.ID, 2, 0)
	recordAnswer(t, db, user.ID, answered.ID, true, 4*30*24*time.Hour)

	test := generate(t, e, engine.GenerateParams{
		UserID:       user.ID,
		TopicIDs:     []uint{area.ID},
		NumQuestions: 5,
	})

	assert.Contains(t, test.QuestionIDs(), answered.ID)
}

func TestGenerateTestIncorrectAnswersStayExcluded(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-incorrect")
	area := createStudyArea(t, db, "Ornamentation")

	// An incorrect answer is withheld indefinitely, not just for the
	// three-month window, until the learner opts back in.
	failed := createQuestion(t, db, area.ID, 2, 0)
	other := createQuestion(t, db, area.ID, 2, 0)
	recordAnswer(t, db, user.ID, failed.ID, false, 6*30*24*time.Hour)

	test := generate(t, e, engine.GenerateParams{
		UserID:       user.ID,
		TopicIDs:     []uint{area.ID},
		NumQuestions: 5,
	})
	assert.Equal(t, []uint{other.ID}, test.QuestionIDs())

	retry := generate(t, e, engine.GenerateParams{
		UserID:                   user.ID,
		TopicIDs:                 []uint{area.ID},
		NumQuestions:             5,
		IncludePreviousIncorrect: true,
	})
	assert.Contains(t, retry.QuestionIDs(), failed.ID)
}

func TestGenerateTestAvoidRepeatExtracts(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-extracts")
	area := createStudyArea(t, db, "Listening")

	extract := models.Extract{Name: "Symphony No. 5, i", AudioURL: "/audio/5-1.mp3"}
	require.NoError(t, db.Create(&extract).Error)

	shared := make(map[uint]struct{})
	for i := 0; i < 3; i++ {
		q := createQuestion(t, db, area.ID, 2, 0)
		require.NoError(t, db.Model(&q).Update("extract_id", extract.ID).Error)
		shared[q.ID] = struct{}{}
	}
	plain := createQuestion(t, db, area.ID, 2, 0)

	test := generate(t, e, engine.GenerateParams{
		UserID:              user.ID,
		TopicIDs:            []uint{area.ID},
		NumQuestions:        4,
		AvoidRepeatExtracts: true,
	})

	ids := test.QuestionIDs()
	assert.Len(t, ids, 2)
	fromShared := 0
	for _, id := range ids {
		if _, ok := shared[id]; ok {
			fromShared++
		}
	}
	assert.Equal(t, 1, fromShared)
	assert.Contains(t, ids, plain.ID)
}

func TestGenerateTestTimeLimitAndCounters(t *testing.T) {
	db := setupDB(t)
	e := engine.New(db)
	user := createUser(t, db, "generate-limit")
	area := createStudyArea(t, db, "Form")
	createQuestion(t, db, area.ID, 2, 0)

	test := generate(t, e, engine.GenerateParams{
		UserID:             user.ID,
		TopicIDs:           []uint{area.ID},
		NumQuestions:       5,
		TimeLimitRequested: true,
		TimeLimit:          600,
	})

	require.NotNil(t, test.TimeLimit)
	assert.Equal(t, 600, *test.TimeLimit)
	assert.True(t, test.TimeLimitRequested)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 1, reloaded.TestsCount)
}
