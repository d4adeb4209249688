package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"clements/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnswerResult is what a submission reports back to the presentation layer.
type AnswerResult struct {
	Correct       bool
	CorrectAnswer int
	Marks         int
	Progress      int
	NextQuestion  int
	Complete      bool
}

// LoadTest fetches the user's test, applying the lazy time-limit check: if
// the limit has expired the test is marked complete before anything else
// sees it.
func (e *Engine) LoadTest(userID, testID uint) (*models.Test, error) {
	var test models.Test
	if err := e.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSessionState
		}
		return nil, fmt.Errorf("loading test: %w", err)
	}

	if test.UserID != userID {
		return nil, ErrUnauthorized
	}

	if !test.Complete && test.TimeLimitRequested && test.TimeLimit != nil {
		elapsed := time.Since(test.StartTime)
		if elapsed >= time.Duration(*test.TimeLimit)*time.Second {
			now := time.Now()
			err := e.DB.Model(&test).Updates(map[string]interface{}{
				"complete": true,
				"end_time": now,
			}).Error
			if err != nil {
				return nil, fmt.Errorf("completing expired test: %w", err)
			}
			test.Complete = true
			test.EndTime = &now
		}
	}

	return &test, nil
}

// TimeRemaining reports the seconds left on a timed test, or -1 when the
// test has no limit.
func TimeRemaining(test *models.Test) int {
	if !test.TimeLimitRequested || test.TimeLimit == nil {
		return -1
	}
	elapsed := int(time.Since(test.StartTime).Seconds())
	remaining := *test.TimeLimit - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SubmitAnswer records one answer for a test question: upserts the
// UserQuestion row for the (user, question, test) triple, recomputes marks
// and progress from recorded rows, advances the cursor and bumps the user's
// aggregate counters. The whole submission runs in one transaction.
func (e *Engine) SubmitAnswer(userID, testID, questionID uint, selectedAnswer int) (*AnswerResult, error) {
	test, err := e.LoadTest(userID, testID)
	if err != nil {
		return nil, err
	}
	if test.Complete {
		return nil, ErrTestComplete
	}

	ids := test.QuestionIDs()
	if len(ids) == 0 || test.CurrentQuestion < 0 || test.CurrentQuestion > len(ids) {
		return nil, ErrInvalidSessionState
	}

	position := -1
	for i, id := range ids {
		if id == questionID {
			position = i
			break
		}
	}
	if position < 0 {
		return nil, ErrQuestionNotInTest
	}

	var question models.Question
	if err := e.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotInTest
		}
		return nil, fmt.Errorf("loading question: %w", err)
	}

	correct := selectedAnswer == question.CorrectAnswer
	result := &AnswerResult{Correct: correct, CorrectAnswer: question.CorrectAnswer}

	err = e.DB.Transaction(func(tx *gorm.DB) error {
		record := models.UserQuestion{
			UserID:         userID,
			QuestionID:     questionID,
			TestID:         &test.ID,
			SelectedAnswer: selectedAnswer,
			Correct:        correct,
			Type:           question.Type,
		}
		// Second submission for the same pair updates, never duplicates.
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "question_id"}, {Name: "test_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"selected_answer", "correct", "type", "updated_at"}),
		}).Create(&record).Error; err != nil {
			return err
		}

		var marks int64
		if err := tx.Model(&models.UserQuestion{}).
			Where("test_id = ? AND correct = ?", test.ID, true).
			Count(&marks).Error; err != nil {
			return err
		}
		var answered int64
		if err := tx.Model(&models.UserQuestion{}).
			Where("test_id = ?", test.ID).
			Count(&answered).Error; err != nil {
			return err
		}

		answers := splitAnswers(test.Answers, len(ids))
		answers[position] = strconv.Itoa(selectedAnswer)

		next := test.CurrentQuestion
		if next < len(ids) {
			next++
		}
		complete := next >= len(ids)
		progress := int(math.Round(float64(answered) / float64(len(ids)) * 100))

		updates := map[string]interface{}{
			"answers":          strings.Join(answers, ","),
			"current_question": next,
			"marks":            marks,
			"progress":         progress,
			"complete":         complete,
		}
		if complete {
			updates["end_time"] = time.Now()
		}
		if err := tx.Model(&models.Test{}).Where("id = ?", test.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		userUpdates := map[string]interface{}{
			"questions_total": gorm.Expr("questions_total + 1"),
		}
		if correct {
			userUpdates["questions_correct"] = gorm.Expr("questions_correct + 1")
			userUpdates["progress_total"] = gorm.Expr("progress_total + 1")
			if question.Difficulty >= 1 && question.Difficulty <= 5 {
				column := fmt.Sprintf("progress_grade%d", question.Difficulty)
				userUpdates[column] = gorm.Expr(column + " + 1")
			}
		} else {
			userUpdates["questions_incorrect"] = gorm.Expr("questions_incorrect + 1")
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(userUpdates).Error; err != nil {
			return err
		}

		result.Marks = int(marks)
		result.Progress = progress
		result.NextQuestion = next
		result.Complete = complete
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recording answer: %w", err)
	}

	return result, nil
}

// MoveToPrevious steps the cursor back one question, floored at zero.
// Recorded answers are left untouched.
func (e *Engine) MoveToPrevious(userID, testID uint) (*models.Test, error) {
	test, err := e.LoadTest(userID, testID)
	if err != nil {
		return nil, err
	}
	if test.Complete {
		return nil, ErrTestComplete
	}

	if test.CurrentQuestion > 0 {
		test.CurrentQuestion--
		if err := e.DB.Model(test).
			Update("current_question", test.CurrentQuestion).Error; err != nil {
			return nil, fmt.Errorf("moving cursor: %w", err)
		}
	}
	return test, nil
}

// FinishTest finalizes the test as-is, regardless of cursor position.
// Unanswered questions are not backfilled.
func (e *Engine) FinishTest(userID, testID uint) (*models.Test, error) {
	test, err := e.LoadTest(userID, testID)
	if err != nil {
		return nil, err
	}
	if test.Complete {
		return test, nil
	}

	now := time.Now()
	err = e.DB.Model(test).Updates(map[string]interface{}{
		"complete":         true,
		"end_time":         now,
		"current_question": len(test.QuestionIDs()),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("finishing test: %w", err)
	}
	test.Complete = true
	test.EndTime = &now
	test.CurrentQuestion = len(test.QuestionIDs())
	return test, nil
}

// CurrentQuestion loads the question under the test's cursor, with its
// extract and study area for rendering.
func (e *Engine) CurrentQuestion(test *models.Test) (*models.Question, error) {
	ids := test.QuestionIDs()
	if test.CurrentQuestion < 0 || test.CurrentQuestion >= len(ids) {
		return nil, ErrInvalidSessionState
	}

	var question models.Question
	err := e.DB.Preload("Extract").Preload("StudyArea").
		First(&question, ids[test.CurrentQuestion]).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSessionState
		}
		return nil, fmt.Errorf("loading current question: %w", err)
	}
	return &question, nil
}

// TestAnswers returns the recorded answers for a test keyed by question ID,
// for the results and review views.
func (e *Engine) TestAnswers(userID, testID uint) (map[uint]models.UserQuestion, error) {
	var rows []models.UserQuestion
	if err := e.DB.Where("user_id = ? AND test_id = ?", userID, testID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading test answers: %w", err)
	}
	answers := make(map[uint]models.UserQuestion, len(rows))
	for _, row := range rows {
		answers[row.QuestionID] = row
	}
	return answers, nil
}

func splitAnswers(serialized string, total int) []string {
	answers := make([]string, total)
	if serialized == "" {
		return answers
	}
	for i, part := range strings.Split(serialized, ",") {
		if i >= total {
			break
		}
		answers[i] = part
	}
	return answers
}
