package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"clements/backend/config"
	"clements/backend/models"
	"clements/backend/routes"
	"clements/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
)

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func setup() {
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	var err error
	db, err = gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := utils.Migrate(db); err != nil {
		panic(err)
	}

	logger := log.New(io.Discard, "", 0)
	app = fiber.New()
	routes.SetupRoutes(app, db, cfg, logger, &utils.LogMailer{Logger: logger})
}

func jsonRequest(method, path, token string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func doRequest(t *testing.T, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

func doRequestList(t *testing.T, req *http.Request) (*http.Response, []map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

// registerUser creates an account through the API and returns the token and
// the persisted user.
func registerUser(t *testing.T, displayname string) (string, models.User) {
	t.Helper()

	resp, result := doRequest(t, jsonRequest("POST", "/api/auth/register", "", map[string]interface{}{
		"name":             "Test " + displayname,
		"displayname":      displayname,
		"email":            displayname + "@example.com",
		"password":         "password123",
		"confirm_password": "password123",
	}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	token, _ := result["token"].(string)
	require.NotEmpty(t, token)

	var user models.User
	require.NoError(t, db.Where("displayname = ?", displayname).First(&user).Error)
	return token, user
}

// seedTopic inserts a study area with count questions, all with correct
// answer 0 at the given difficulty.
func seedTopic(t *testing.T, name string, count, difficulty int) (models.StudyArea, []uint) {
	t.Helper()

	area := models.StudyArea{Name: name}
	require.NoError(t, db.Create(&area).Error)

	ids := make([]uint, 0, count)
	for i := 0; i < count; i++ {
		question := models.Question{
			StudyAreaID:   area.ID,
			Type:          models.QuestionTypeTMCQ,
			Difficulty:    difficulty,
			Text:          fmt.Sprintf("%s question %d", name, i+1),
			CorrectAnswer: 0,
		}
		require.NoError(t, question.SetOptions([]models.QuestionOption{
			{Text: "A"}, {Text: "B"}, {Text: "C"}, {Text: "D"},
		}))
		require.NoError(t, db.Create(&question).Error)
		ids = append(ids, question.ID)
	}
	return area, ids
}
