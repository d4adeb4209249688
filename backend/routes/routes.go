package routes

import (
	"log"

	"clements/backend/config"
	"clements/backend/controllers"
	"clements/backend/middleware"
	"clements/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger, mailer utils.Mailer) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg, mailer)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Post("/api/auth/forgot", authController.ForgotPassword)
	app.Post("/api/auth/reset", authController.ResetPassword)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	orgMiddleware := middleware.OrgMiddleware(db, cfg)

	// Account routes
	accountController := controllers.NewAccountController(db, cfg)
	app.Get("/api/account/profile", authMiddleware, accountController.GetProfile)
	app.Put("/api/account/profile", authMiddleware, accountController.UpdateProfile)
	app.Put("/api/account/password", authMiddleware, accountController.UpdatePassword)

	// Practice routes
	practiceController := controllers.NewPracticeController(db, cfg, logger)
	practice := app.Group("/api/practice", authMiddleware)
	practice.Get("/topics", practiceController.GetTopics)
	practice.Get("/topics/:id/next", practiceController.NextQuestion)
	practice.Post("/answer", practiceController.SubmitAnswer)

	// Test routes
	testsController := controllers.NewTestsController(db, cfg, logger)
	tests := app.Group("/api/tests", authMiddleware)
	tests.Post("/", testsController.CreateTest)
	tests.Get("/", testsController.GetUserTests)
	tests.Get("/active", testsController.ResumeTest)
	tests.Get("/:id", testsController.GetTest)
	tests.Post("/:id/answer", testsController.SubmitAnswer)
	tests.Post("/:id/previous", testsController.MoveToPrevious)
	tests.Post("/:id/finish", testsController.FinishTest)
	tests.Post("/:id/exit", testsController.ExitTest)
	tests.Get("/:id/results", testsController.GetResults)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Get("/api/progress/overview", authMiddleware, progressController.GetOverview)

	// Assignment routes
	assignmentsController := controllers.NewAssignmentsController(db, cfg, logger)
	app.Post("/api/assignments", orgMiddleware, assignmentsController.CreateAssignment)
	app.Get("/api/assignments", authMiddleware, assignmentsController.GetAssignments)
	app.Post("/api/assignments/:id/start", authMiddleware, assignmentsController.StartAssignment)
}
