package controllers

import (
	"errors"
	"log"
	"strconv"

	"clements/backend/config"
	"clements/backend/engine"
	"clements/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TestsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *engine.Engine
	Logger *log.Logger
}

func NewTestsController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *TestsController {
	return &TestsController{DB: db, Cfg: cfg, Engine: engine.New(db), Logger: logger}
}

type CreateTestInput struct {
	Topics                   []uint `json:"topics"`
	NumQuestions             int    `json:"num_questions"`
	Difficulty               string `json:"difficulty"`
	TimeLimitRequested       bool   `json:"time_limit_requested"`
	TimeLimitMinutes         int    `json:"time_limit_minutes"`
	IncludePreviousCorrect   bool   `json:"include_previous_correct"`
	IncludePreviousIncorrect bool   `json:"include_previous_incorrect"`
	AvoidRepeatExtracts      bool   `json:"avoid_repeat_extracts"`
}

func (tc *TestsController) CreateTest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input CreateTestInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if len(input.Topics) == 0 || input.NumQuestions < 5 || input.NumQuestions > 50 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Select at least one topic and between 5 and 50 questions",
		})
	}

	test, err := tc.Engine.GenerateTest(engine.GenerateParams{
		UserID:                   userID,
		TopicIDs:                 input.Topics,
		Difficulty:               input.Difficulty,
		NumQuestions:             input.NumQuestions,
		TimeLimitRequested:       input.TimeLimitRequested,
		TimeLimit:                input.TimeLimitMinutes * 60,
		IncludePreviousCorrect:   input.IncludePreviousCorrect,
		IncludePreviousIncorrect: input.IncludePreviousIncorrect,
		AvoidRepeatExtracts:      input.AvoidRepeatExtracts,
	})
	if err != nil {
		return tc.engineError(c, err)
	}

	newCookiePointer(c).SetActiveTest(test.ID)

	return c.JSON(fiber.Map{
		"message": "Test created",
		"test": fiber.Map{
			"id":              test.ID,
			"num_questions":   test.NumQuestions,
			"marks_available": test.MarksAvailable,
		},
	})
}

func (tc *TestsController) GetUserTests(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var tests []models.Test
	if err := tc.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&tests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(tests))
	for _, test := range tests {
		result = append(result, fiber.Map{
			"id":              test.ID,
			"type":            test.Type,
			"num_questions":   test.NumQuestions,
			"marks":           test.Marks,
			"marks_available": test.MarksAvailable,
			"progress":        test.Progress,
			"complete":        test.Complete,
			"start_time":      test.StartTime,
			"end_time":        test.EndTime,
		})
	}

	return c.JSON(result)
}

// GetTest shows the question under the cursor. Reading a timed-out test
// completes it first, so the client is sent straight to the results.
func (tc *TestsController) GetTest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test ID",
		})
	}

	test, err := tc.Engine.LoadTest(userID, uint(testID))
	if err != nil {
		return tc.engineError(c, err)
	}

	if test.Complete {
		newCookiePointer(c).Clear()
		return c.JSON(fiber.Map{
			"complete": true,
			"test_id":  test.ID,
		})
	}

	question, err := tc.Engine.CurrentQuestion(test)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidSessionState) {
			newCookiePointer(c).Clear()
		}
		return tc.engineError(c, err)
	}

	answers, err := tc.Engine.TestAnswers(userID, test.ID)
	if err != nil {
		return tc.engineError(c, err)
	}
	_, alreadyAnswered := answers[question.ID]

	newCookiePointer(c).SetActiveTest(test.ID)

	// Options without the correct answer index; that only ships with the
	// results view.
	payload := fiber.Map{
		"id":         question.ID,
		"type":       question.Type,
		"text":       question.Text,
		"options":    question.OptionList(),
		"study_area": question.StudyArea.Name,
	}
	if question.Extract != nil {
		payload["extract"] = fiber.Map{
			"name":      question.Extract.Name,
			"audio_url": question.Extract.AudioURL,
		}
	}

	return c.JSON(fiber.Map{
		"test": fiber.Map{
			"id":               test.ID,
			"current_question": test.CurrentQuestion,
			"num_questions":    test.NumQuestions,
			"progress":         test.Progress,
			"marks":            test.Marks,
			"marks_available":  test.MarksAvailable,
			"time_remaining":   engine.TimeRemaining(test),
		},
		"question":         payload,
		"already_answered": alreadyAnswered,
	})
}

func (tc *TestsController) SubmitAnswer(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test ID",
		})
	}

	var input struct {
		QuestionID     uint `json:"question_id"`
		SelectedAnswer int  `json:"selected_answer"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	result, err := tc.Engine.SubmitAnswer(userID, uint(testID), input.QuestionID, input.SelectedAnswer)
	if err != nil {
		return tc.engineError(c, err)
	}

	if result.Complete {
		newCookiePointer(c).Clear()
	}

	return c.JSON(fiber.Map{
		"correct":        result.Correct,
		"correct_answer": result.CorrectAnswer,
		"marks":          result.Marks,
		"progress":       result.Progress,
		"next_question":  result.NextQuestion,
		"complete":       result.Complete,
	})
}

func (tc *TestsController) MoveToPrevious(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test ID",
		})
	}

	test, err := tc.Engine.MoveToPrevious(userID, uint(testID))
	if err != nil {
		return tc.engineError(c, err)
	}

	return c.JSON(fiber.Map{
		"current_question": test.CurrentQuestion,
	})
}

func (tc *TestsController) FinishTest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test ID",
		})
	}

	test, err := tc.Engine.FinishTest(userID, uint(testID))
	if err != nil {
		return tc.engineError(c, err)
	}

	newCookiePointer(c).Clear()

	return c.JSON(fiber.Map{
		"message":         "Test finished",
		"marks":           test.Marks,
		"marks_available": test.MarksAvailable,
		"progress":        test.Progress,
	})
}

// ExitTest abandons the session: the pointer is dropped but the test row
// stays incomplete and can be resumed later.
func (tc *TestsController) ExitTest(c *fiber.Ctx) error {
	newCookiePointer(c).Clear()
	return c.JSON(fiber.Map{
		"message": "Test exited",
	})
}

// ResumeTest picks up whatever test the session pointer refers to.
func (tc *TestsController) ResumeTest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	test, err := tc.Engine.ResumeActive(newCookiePointer(c), userID)
	if err != nil {
		return tc.engineError(c, err)
	}

	return c.JSON(fiber.Map{
		"test_id":          test.ID,
		"current_question": test.CurrentQuestion,
		"complete":         test.Complete,
	})
}

func (tc *TestsController) GetResults(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test ID",
		})
	}

	test, err := tc.Engine.LoadTest(userID, uint(testID))
	if err != nil {
		return tc.engineError(c, err)
	}

	answers, err := tc.Engine.TestAnswers(userID, test.ID)
	if err != nil {
		return tc.engineError(c, err)
	}

	ids := test.QuestionIDs()
	var questions []models.Question
	if len(ids) > 0 {
		if err := tc.DB.Preload("StudyArea").Where("id IN ?", ids).
			Find(&questions).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
	}
	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	// Results keep the generated order.
	review := make([]fiber.Map, 0, len(ids))
	for i, id := range ids {
		q, ok := byID[id]
		if !ok {
			continue
		}
		entry := fiber.Map{
			"position":       i,
			"id":             q.ID,
			"type":           q.Type,
			"text":           q.Text,
			"options":        q.OptionList(),
			"correct_answer": q.CorrectAnswer,
			"study_area":     q.StudyArea.Name,
			"notes":          q.Notes,
		}
		if answer, answered := answers[id]; answered {
			entry["selected_answer"] = answer.SelectedAnswer
			entry["correct"] = answer.Correct
		}
		review = append(review, entry)
	}

	return c.JSON(fiber.Map{
		"test": fiber.Map{
			"id":              test.ID,
			"type":            test.Type,
			"difficulty":      test.Difficulty,
			"marks":           test.Marks,
			"marks_available": test.MarksAvailable,
			"progress":        test.Progress,
			"complete":        test.Complete,
			"start_time":      test.StartTime,
			"end_time":        test.EndTime,
		},
		"questions": review,
	})
}

func (tc *TestsController) engineError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, engine.ErrNoQuestionsAvailable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No questions match your filters, try adjusting them",
		})
	case errors.Is(err, engine.ErrUnauthorized):
		tc.Logger.Printf("unauthorized test access attempt from %s", c.IP())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Access denied",
		})
	case errors.Is(err, engine.ErrInvalidSessionState):
		newCookiePointer(c).Clear()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No active test",
		})
	case errors.Is(err, engine.ErrQuestionNotInTest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is not part of this test",
		})
	case errors.Is(err, engine.ErrTestComplete):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Test is already complete",
		})
	default:
		tc.Logger.Printf("test operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process request",
		})
	}
}
