package controllers

import (
	"errors"
	"regexp"
	"time"

	"clements/backend/config"
	"clements/backend/models"
	"clements/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var displaynamePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

type AuthController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Mailer   utils.Mailer
	validate *validator.Validate
}

func NewAuthController(db *gorm.DB, cfg *config.Config, mailer utils.Mailer) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Mailer: mailer, validate: validator.New()}
}

type RegisterInput struct {
	Name        string `json:"name" validate:"required,min=2"`
	Displayname string `json:"displayname" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Confirm     string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// Register godoc
// @Summary Register a new individual account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterInput true "Registration data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := ac.validate.Struct(input); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		return utils.ValidationError(c, fields)
	}

	// Display names are alphanumeric and hyphens only.
	if !displaynamePattern.MatchString(input.Displayname) {
		return utils.ValidationError(c, map[string]string{
			"Displayname": "alphanumeric and hyphens only",
		})
	}

	var existing models.User
	err := ac.DB.Where("email = ? OR displayname = ?", input.Email, input.Displayname).
		First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email or display name already taken",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not hash password",
		})
	}

	user := models.User{
		Type:         "ind",
		Name:         input.Name,
		Displayname:  input.Displayname,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create user",
		})
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":          user.ID,
			"name":        user.Name,
			"displayname": user.Displayname,
			"email":       user.Email,
		},
	})
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	// Relative increment, same as the answer counters.
	ac.DB.Model(&user).Update("successful_logins", gorm.Expr("successful_logins + 1"))
	ac.DB.Create(&models.LoginHistory{UserID: user.ID, LoginTime: time.Now()})

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":          user.ID,
			"name":        user.Name,
			"displayname": user.Displayname,
			"email":       user.Email,
			"type":        user.Type,
		},
	})
}

// ForgotPassword issues a reset token. The response never reveals whether
// the email exists.
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err == nil {
		reset := models.PasswordResetToken{
			UserID:    user.ID,
			Token:     uuid.NewString(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		if err := ac.DB.Create(&reset).Error; err == nil {
			ac.Mailer.SendPasswordReset(user.Email, reset.Token)
		}
	}

	return c.JSON(fiber.Map{
		"message": "If the email exists, a reset link has been sent",
	})
}

func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if len(input.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Password must be at least 6 characters",
		})
	}

	var reset models.PasswordResetToken
	err := ac.DB.Where("token = ? AND consumed = ? AND expires_at > ?",
		input.Token, false, time.Now()).First(&reset).Error
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not hash password",
		})
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", string(hashedPassword)).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("consumed", true).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not reset password",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Password updated",
	})
}
