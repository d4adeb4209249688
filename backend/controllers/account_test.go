package controllers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	token, user := registerUser(t, "account-profile")

	resp, result := doRequest(t, jsonRequest("GET", "/api/account/profile", token, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(user.ID), result["id"])
	assert.Equal(t, "account-profile", result["displayname"])
	assert.Equal(t, "ind", result["type"])
}

func TestUpdateProfile(t *testing.T) {
	token, _ := registerUser(t, "account-update")

	resp, _ := doRequest(t, jsonRequest("PUT", "/api/account/profile", token, map[string]interface{}{
		"displayname": "account-updated",
		"name":        "New Name",
	}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, result := doRequest(t, jsonRequest("GET", "/api/account/profile", token, nil))
	assert.Equal(t, "account-updated", result["displayname"])
	assert.Equal(t, "New Name", result["name"])
}

func TestUpdateProfileTakenDisplayname(t *testing.T) {
	registerUser(t, "account-taken")
	token, _ := registerUser(t, "account-taker")

	resp, _ := doRequest(t, jsonRequest("PUT", "/api/account/profile", token, map[string]interface{}{
		"displayname": "account-taken",
	}))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUpdatePassword(t *testing.T) {
	token, _ := registerUser(t, "account-password")

	// Wrong current password is rejected.
	resp, _ := doRequest(t, jsonRequest("PUT", "/api/account/password", token, map[string]interface{}{
		"current_password": "wrong",
		"new_password":     "newpassword456",
	}))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doRequest(t, jsonRequest("PUT", "/api/account/password", token, map[string]interface{}{
		"current_password": "password123",
		"new_password":     "newpassword456",
	}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, jsonRequest("POST", "/api/auth/login", "", map[string]interface{}{
		"email":    "account-password@example.com",
		"password": "newpassword456",
	}))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
