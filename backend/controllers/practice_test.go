package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTopics(t *testing.T) {
	token, _ := registerUser(t, "practice-topics")
	area, _ := seedTopic(t, "Topics Area", 4, 2)

	resp, topics := doRequestList(t, jsonRequest("GET", "/api/practice/topics", token, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	found := false
	for _, topic := range topics {
		if topic["id"] == float64(area.ID) {
			found = true
			assert.Equal(t, "Topics Area", topic["name"])
			assert.Equal(t, float64(4), topic["questions"])
		}
	}
	assert.True(t, found, "seeded topic missing from listing")
}

func TestPracticeQuestionFlow(t *testing.T) {
	token, _ := registerUser(t, "practice-flow")
	area, ids := seedTopic(t, "Practice Flow Area", 1, 3)

	resp, result := doRequest(t, jsonRequest("GET", fmt.Sprintf("/api/practice/topics/%d/next", area.ID), token, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	question := result["question"].(map[string]interface{})
	assert.Equal(t, float64(ids[0]), question["id"])
	_, leaked := question["correct_answer"]
	assert.False(t, leaked)
	// No attempts yet, so no prior answer either.
	_, hasPrior := result["previous_answer"]
	assert.False(t, hasPrior)

	resp, result = doRequest(t, jsonRequest("POST", "/api/practice/answer", token, map[string]interface{}{
		"question_id":     ids[0],
		"selected_answer": 2,
	}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, result["correct"])
	assert.Equal(t, float64(0), result["correct_answer"])

	// The failed attempt shows up on the next serving of the question.
	resp, result = doRequest(t, jsonRequest("GET", fmt.Sprintf("/api/practice/topics/%d/next", area.ID), token, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	prior := result["previous_answer"].(map[string]interface{})
	assert.Equal(t, float64(2), prior["selected_answer"])
	assert.Equal(t, false, prior["correct"])
}

func TestPracticeEmptyTopic(t *testing.T) {
	token, _ := registerUser(t, "practice-empty")
	area, _ := seedTopic(t, "Empty Practice Area", 0, 2)

	resp, _ := doRequest(t, jsonRequest("GET", fmt.Sprintf("/api/practice/topics/%d/next", area.ID), token, nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPracticeAnswerUnknownQuestion(t *testing.T) {
	token, _ := registerUser(t, "practice-unknown")

	resp, _ := doRequest(t, jsonRequest("POST", "/api/practice/answer", token, map[string]interface{}{
		"question_id":     999999,
		"selected_answer": 0,
	}))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
