package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"clements/backend/models"

	"gorm.io/gorm"
)

// NextPracticeQuestion picks a random question from the study area that the
// user has not yet answered correctly. Once every question in the area has
// been cleared it falls back to the whole area.
func (e *Engine) NextPracticeQuestion(userID, studyAreaID uint) (*models.Question, *models.UserQuestion, error) {
	var all []uint
	if err := e.DB.Model(&models.Question{}).
		Where("study_area_id = ?", studyAreaID).
		Pluck("id", &all).Error; err != nil {
		return nil, nil, fmt.Errorf("loading topic questions: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, ErrNoQuestionsAvailable
	}

	var correctIDs []uint
	if err := e.DB.Model(&models.UserQuestion{}).
		Where("user_id = ? AND correct = ?", userID, true).
		Distinct().Pluck("question_id", &correctIDs).Error; err != nil {
		return nil, nil, fmt.Errorf("loading answered questions: %w", err)
	}
	answeredCorrectly := make(map[uint]struct{}, len(correctIDs))
	for _, id := range correctIDs {
		answeredCorrectly[id] = struct{}{}
	}

	candidates := make([]uint, 0, len(all))
	for _, id := range all {
		if _, done := answeredCorrectly[id]; !done {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		candidates = all
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	pick := candidates[rng.Intn(len(candidates))]

	var question models.Question
	if err := e.DB.Preload("Extract").Preload("StudyArea").
		First(&question, pick).Error; err != nil {
		return nil, nil, fmt.Errorf("loading practice question: %w", err)
	}

	// Latest prior answer, if any, so the page can show previous attempts.
	var prior models.UserQuestion
	err := e.DB.Where("user_id = ? AND question_id = ?", userID, pick).
		Order("created_at DESC").First(&prior).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &question, nil, nil
		}
		return nil, nil, fmt.Errorf("loading prior answer: %w", err)
	}
	return &question, &prior, nil
}

// SubmitPracticeAnswer records a standalone practice answer (no test) and
// bumps the user's aggregate counters. Unlike test answers, every practice
// attempt appends a fresh row.
func (e *Engine) SubmitPracticeAnswer(userID, questionID uint, selectedAnswer int) (*AnswerResult, error) {
	var question models.Question
	if err := e.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotInTest
		}
		return nil, fmt.Errorf("loading question: %w", err)
	}

	correct := selectedAnswer == question.CorrectAnswer

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		record := models.UserQuestion{
			UserID:         userID,
			QuestionID:     questionID,
			SelectedAnswer: selectedAnswer,
			Correct:        correct,
			Type:           question.Type,
		}
		if err := tx.Create(&record).Error; err != nil {
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
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(userUpdates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("recording practice answer: %w", err)
	}

	return &AnswerResult{Correct: correct, CorrectAnswer: question.CorrectAnswer}, nil
}
