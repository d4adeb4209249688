package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"clements/backend/config"
	"clements/backend/engine"
	"clements/backend/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AssignmentsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Engine   *engine.Engine
	Logger   *log.Logger
	validate *validator.Validate
}

func NewAssignmentsController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *AssignmentsController {
	return &AssignmentsController{
		DB:       db,
		Cfg:      cfg,
		Engine:   engine.New(db),
		Logger:   logger,
		validate: validator.New(),
	}
}

type CreateAssignmentInput struct {
	Savename           string `json:"savename" validate:"required"`
	Deadline           string `json:"deadline"` // RFC 3339, optional
	Students           []uint `json:"students" validate:"required,min=1"`
	Topics             []uint `json:"topics" validate:"required,min=1"`
	NumQuestions       int    `json:"num_questions" validate:"required,gte=5,lte=50"`
	Difficulty         string `json:"difficulty"`
	TimeLimitRequested bool   `json:"time_limit_requested"`
}

func (ac *AssignmentsController) CreateAssignment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input CreateAssignmentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := ac.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing or invalid assignment fields",
		})
	}

	minDifficulty, maxDifficulty := engine.DifficultyRange(input.Difficulty)

	assignment := models.Assignment{
		UserID:             userID,
		Savename:           input.Savename,
		Topics:             models.JoinIDList(input.Topics),
		Questions:          strconv.Itoa(input.NumQuestions),
		TimeLimitRequested: input.TimeLimitRequested,
	}
	if minDifficulty > 0 {
		assignment.MinDifficulty = &minDifficulty
	}
	if maxDifficulty > 0 {
		assignment.MaxDifficulty = &maxDifficulty
	}
	if input.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, input.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid deadline",
			})
		}
		assignment.Deadline = &deadline
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		for _, studentID := range input.Students {
			ua := models.UserAssignment{
				UserID:       studentID,
				AssignmentID: assignment.ID,
			}
			if err := tx.Create(&ua).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		ac.Logger.Printf("assignment creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create assignment",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Assignment created",
		"assignment": fiber.Map{
			"id":       assignment.ID,
			"savename": assignment.Savename,
			"students": len(input.Students),
		},
	})
}

// GetAssignments lists the caller's assigned work with completion state.
func (ac *AssignmentsController) GetAssignments(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var assignments []models.UserAssignment
	if err := ac.DB.Preload("Assignment").Preload("Test").
		Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(assignments))
	for _, ua := range assignments {
		entry := fiber.Map{
			"id":       ua.ID,
			"savename": ua.Assignment.Savename,
			"deadline": ua.Assignment.Deadline,
			"started":  ua.TestID != nil,
		}
		if ua.Test != nil {
			entry["test_id"] = ua.Test.ID
			entry["complete"] = ua.Test.Complete
			entry["marks"] = ua.Test.Marks
			entry["marks_available"] = ua.Test.MarksAvailable
		}
		result = append(result, entry)
	}

	return c.JSON(result)
}

// StartAssignment generates the student's test on first start and returns
// the existing one on any later call.
func (ac *AssignmentsController) StartAssignment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	userAssignmentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid assignment ID",
		})
	}

	var ua models.UserAssignment
	if err := ac.DB.Preload("Assignment").First(&ua, userAssignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Assignment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if ua.UserID != userID {
		ac.Logger.Printf("unauthorized assignment access attempt from %s", c.IP())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Access denied",
		})
	}

	if ua.TestID != nil {
		return c.JSON(fiber.Map{
			"test_id": *ua.TestID,
		})
	}

	numQuestions, err := strconv.Atoi(ua.Assignment.Questions)
	if err != nil || numQuestions <= 0 {
		numQuestions = 10
	}

	// Assignment tests include previously-answered questions so every
	// student faces the same criteria regardless of history.
	params := engine.GenerateParams{
		UserID:                   userID,
		TopicIDs:                 models.ParseIDList(ua.Assignment.Topics),
		NumQuestions:             numQuestions,
		TimeLimitRequested:       ua.Assignment.TimeLimitRequested,
		IncludePreviousCorrect:   true,
		IncludePreviousIncorrect: true,
		Type:                     models.TestTypeAssignment,
		AssignmentID:             &ua.AssignmentID,
	}
	if ua.Assignment.MinDifficulty != nil {
		params.MinDifficulty = *ua.Assignment.MinDifficulty
	}
	if ua.Assignment.MaxDifficulty != nil {
		params.MaxDifficulty = *ua.Assignment.MaxDifficulty
	}

	test, err := ac.Engine.GenerateTest(params)
	if err != nil {
		if errors.Is(err, engine.ErrNoQuestionsAvailable) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No questions available for this assignment",
			})
		}
		ac.Logger.Printf("assignment start failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not start assignment",
		})
	}

	if err := ac.DB.Model(&ua).Update("test_id", test.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not link test to assignment",
		})
	}

	newCookiePointer(c).SetActiveTest(test.ID)

	return c.JSON(fiber.Map{
		"test_id": test.ID,
	})
}
