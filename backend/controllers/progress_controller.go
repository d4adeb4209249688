package controllers

import (
	"clements/backend/config"
	"clements/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// GetProgress godoc
// @Summary Per-topic answer accuracy
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var areas []models.StudyArea
	if err := pc.DB.Order("position ASC").Find(&areas).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	topics := make([]fiber.Map, 0, len(areas))
	for _, area := range areas {
		var total int64
		pc.DB.Model(&models.Question{}).
			Where("study_area_id = ?", area.ID).Count(&total)

		// Distinct questions answered correctly at least once.
		var correct int64
		pc.DB.Model(&models.UserQuestion{}).
			Joins("JOIN questions ON questions.id = user_questions.question_id").
			Where("user_questions.user_id = ? AND user_questions.correct = ? AND questions.study_area_id = ?",
				userID, true, area.ID).
			Distinct("user_questions.question_id").Count(&correct)

		var answered int64
		pc.DB.Model(&models.UserQuestion{}).
			Joins("JOIN questions ON questions.id = user_questions.question_id").
			Where("user_questions.user_id = ? AND questions.study_area_id = ?", userID, area.ID).
			Distinct("user_questions.question_id").Count(&answered)

		topics = append(topics, fiber.Map{
			"id":        area.ID,
			"name":      area.Name,
			"questions": total,
			"answered":  answered,
			"correct":   correct,
		})
	}

	return c.JSON(fiber.Map{
		"topics": topics,
	})
}

// GetOverview godoc
// @Summary Aggregate answer counters and recent tests
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/overview [get]
func (pc *ProgressController) GetOverview(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := pc.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var testsCompleted int64
	pc.DB.Model(&models.Test{}).
		Where("user_id = ? AND complete = ?", userID, true).
		Count(&testsCompleted)

	var recent []models.Test
	pc.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(5).Find(&recent)

	recentTests := make([]fiber.Map, 0, len(recent))
	for _, test := range recent {
		recentTests = append(recentTests, fiber.Map{
			"id":              test.ID,
			"marks":           test.Marks,
			"marks_available": test.MarksAvailable,
			"complete":        test.Complete,
			"start_time":      test.StartTime,
		})
	}

	return c.JSON(fiber.Map{
		"questions_total":     user.QuestionsTotal,
		"questions_correct":   user.QuestionsCorrect,
		"questions_incorrect": user.QuestionsIncorrect,
		"progress_total":      user.ProgressTotal,
		"progress_by_grade": []int{
			user.ProgressGrade1,
			user.ProgressGrade2,
			user.ProgressGrade3,
			user.ProgressGrade4,
			user.ProgressGrade5,
		},
		"tests_count":     user.TestsCount,
		"tests_completed": testsCompleted,
		"recent_tests":    recentTests,
	})
}
