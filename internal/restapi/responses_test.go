package restapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker.ridelink.org/internal/models"
)

func TestSendResponse(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	response := models.ResponseModel{
		Code:        http.StatusOK,
		CurrentTime: 1234567890,
		Text:        "OK",
		Version:     2,
		Data:        map[string]string{"test": "data"},
	}

	api.sendResponse(w, r, response)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var decoded models.ResponseModel
	err := json.NewDecoder(w.Body).Decode(&decoded)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, decoded.Code)
	assert.Equal(t, "OK", decoded.Text)
	assert.Equal(t, 2, decoded.Version)
}

func TestSendNotFound(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	api.sendNotFound(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response models.ResponseModel
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, response.Code)
	assert.Equal(t, "resource not found", response.Text)
	assert.Equal(t, 2, response.Version)
	assert.Greater(t, response.CurrentTime, int64(0), "CurrentTime should be set")
	assert.Nil(t, response.Data, "Data should be nil for not found")
}

func TestSendUnauthorized(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	api.sendUnauthorized(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response models.ResponseModel
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, response.Code)
	assert.Equal(t, "permission denied", response.Text)
	assert.Equal(t, 1, response.Version)
}

func TestValidationErrorResponse(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	api.validationErrorResponse(w, r, map[string][]string{
		"lat": {"must be a finite number"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response struct {
		Code int `json:"code"`
		Data struct {
			FieldErrors map[string][]string `json:"fieldErrors"`
		} `json:"data"`
	}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, response.Code)
	assert.Equal(t, []string{"must be a finite number"}, response.Data.FieldErrors["lat"])
}

func TestSetJSONResponseType(t *testing.T) {
	w := httptest.NewRecorder()
	var wInterface http.ResponseWriter = w

	setJSONResponseType(&wInterface)

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}
