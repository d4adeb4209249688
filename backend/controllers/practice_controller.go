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

type PracticeController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *engine.Engine
	Logger *log.Logger
}

func NewPracticeController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *PracticeController {
	return &PracticeController{DB: db, Cfg: cfg, Engine: engine.New(db), Logger: logger}
}

// GetTopics godoc
// @Summary List study areas with question counts
// @Tags practice
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Security ApiKeyAuth
// @Router /practice/topics [get]
func (pc *PracticeController) GetTopics(c *fiber.Ctx) error {
	var areas []models.StudyArea
	if err := pc.DB.Order("position ASC").Find(&areas).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(areas))
	for _, area := range areas {
		var count int64
		pc.DB.Model(&models.Question{}).Where("study_area_id = ?", area.ID).Count(&count)

		result = append(result, fiber.Map{
			"id":          area.ID,
			"name":        area.Name,
			"position":    area.Position,
			"description": area.Description,
			"questions":   count,
		})
	}

	return c.JSON(result)
}

// NextQuestion serves a random question from the topic the user has not yet
// answered correctly, with their latest prior attempt if any.
func (pc *PracticeController) NextQuestion(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	studyAreaID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topic ID",
		})
	}

	question, prior, err := pc.Engine.NextPracticeQuestion(userID, uint(studyAreaID))
	if err != nil {
		if errors.Is(err, engine.ErrNoQuestionsAvailable) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No questions available for this topic yet",
			})
		}
		pc.Logger.Printf("practice question selection failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not select a question",
		})
	}

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

	response := fiber.Map{
		"question": payload,
	}
	if prior != nil {
		response["previous_answer"] = fiber.Map{
			"selected_answer": prior.SelectedAnswer,
			"correct":         prior.Correct,
		}
	}

	return c.JSON(response)
}

func (pc *PracticeController) SubmitAnswer(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input struct {
		QuestionID     uint `json:"question_id"`
		SelectedAnswer int  `json:"selected_answer"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	result, err := pc.Engine.SubmitPracticeAnswer(userID, input.QuestionID, input.SelectedAnswer)
	if err != nil {
		if errors.Is(err, engine.ErrQuestionNotInTest) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Question not found",
			})
		}
		pc.Logger.Printf("practice answer failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not record answer",
		})
	}

	return c.JSON(fiber.Map{
		"correct":        result.Correct,
		"correct_answer": result.CorrectAnswer,
	})
}
