package engine

import (
	"fmt"
	"math/rand"
	"time"

	"clements/backend/models"

	"gorm.io/gorm"
)

// Engine implements practice-test generation and progression over the
// persistent store. Handlers hold one instance and call it per request.
type Engine struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

// historyWindowMonths is how far back recently-answered questions are
// withheld from new tests.
const historyWindowMonths = 3

type GenerateParams struct {
	UserID       uint
	TopicIDs     []uint
	Difficulty   string // easy, intermediate, hard; empty = all levels
	// Explicit bounds take precedence over the named band when set.
	MinDifficulty int
	MaxDifficulty int
	NumQuestions  int

	TimeLimitRequested bool
	TimeLimit          int // seconds, used when TimeLimitRequested

	IncludePreviousCorrect   bool
	IncludePreviousIncorrect bool

	// AvoidRepeatExtracts skips candidates whose audio extract is already
	// used by an earlier pick, so a test never plays the same clip twice.
	AvoidRepeatExtracts bool

	Type         string // custom or assignment
	AssignmentID *uint
}

// exclusionSet collects question IDs the learner should not see again:
// answers from the last three months (unless their correctness matches an
// inclusion flag) unioned with everything ever answered incorrectly (unless
// incorrect answers were asked for).
func (e *Engine) exclusionSet(userID uint, includeCorrect, includeIncorrect bool) ([]uint, error) {
	if includeCorrect && includeIncorrect {
		return nil, nil
	}

	excluded := make(map[uint]struct{})

	cutoff := time.Now().AddDate(0, -historyWindowMonths, 0)
	var recent []models.UserQuestion
	if err := e.DB.Select("question_id", "correct").
		Where("user_id = ? AND created_at >= ?", userID, cutoff).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("loading recent answers: %w", err)
	}
	for _, uq := range recent {
		if uq.Correct && includeCorrect {
			continue
		}
		if !uq.Correct && includeIncorrect {
			continue
		}
		excluded[uq.QuestionID] = struct{}{}
	}

	// Standing ban: never re-show a question the user has ever failed,
	// unless they explicitly asked to retry incorrect answers.
	if !includeIncorrect {
		var failed []uint
		if err := e.DB.Model(&models.UserQuestion{}).
			Where("user_id = ? AND correct = ?", userID, false).
			Distinct().Pluck("question_id", &failed).Error; err != nil {
			return nil, fmt.Errorf("loading incorrect answers: %w", err)
		}
		for _, id := range failed {
			excluded[id] = struct{}{}
		}
	}

	ids := make([]uint, 0, len(excluded))
	for id := range excluded {
		ids = append(ids, id)
	}
	return ids, nil
}

// GenerateTest selects a randomized, non-repeating question set matching the
// learner's criteria and persists a new test session.
func (e *Engine) GenerateTest(p GenerateParams) (*models.Test, error) {
	exclude, err := e.exclusionSet(p.UserID, p.IncludePreviousCorrect, p.IncludePreviousIncorrect)
	if err != nil {
		return nil, err
	}

	min, max := p.MinDifficulty, p.MaxDifficulty
	if min == 0 && max == 0 {
		min, max = DifficultyRange(p.Difficulty)
	}
	filter := QuestionFilter{
		TopicIDs:      p.TopicIDs,
		MinDifficulty: min,
		MaxDifficulty: max,
		ExcludeIDs:    exclude,
	}

	var candidates []models.Question
	if err := filter.apply(e.DB.Model(&models.Question{})).
		Select("id", "extract_id").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("loading candidate questions: %w", err)
	}

	if len(candidates) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	// Reseeded per call so two identical requests never produce the same
	// order.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	selected := make([]uint, 0, p.NumQuestions)
	usedExtracts := make(map[uint]struct{})
	for _, q := range candidates {
		if len(selected) == p.NumQuestions {
			break
		}
		if p.AvoidRepeatExtracts && q.ExtractID != nil {
			if _, used := usedExtracts[*q.ExtractID]; used {
				continue
			}
			usedExtracts[*q.ExtractID] = struct{}{}
		}
		selected = append(selected, q.ID)
	}

	testType := p.Type
	if testType == "" {
		testType = models.TestTypeCustom
	}

	test := models.Test{
		UserID:                   p.UserID,
		AssignmentID:             p.AssignmentID,
		Type:                     testType,
		Topics:                   models.JoinIDList(p.TopicIDs),
		Difficulty:               p.Difficulty,
		IncludePreviousCorrect:   p.IncludePreviousCorrect,
		IncludePreviousIncorrect: p.IncludePreviousIncorrect,
		NumQuestions:             len(selected),
		TimeLimitRequested:       p.TimeLimitRequested,
		Questions:                models.JoinIDList(selected),
		Answers:                  "",
		CurrentQuestion:          0,
		StartTime:                time.Now(),
		MarksAvailable:           len(selected),
	}
	if p.TimeLimitRequested {
		limit := p.TimeLimit
		test.TimeLimit = &limit
	}

	err = e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&test).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", p.UserID).
			Update("tests_count", gorm.Expr("tests_count + 1")).Error
	})
	if err != nil {
		return nil, fmt.Errorf("creating test: %w", err)
	}

	return &test, nil
}
