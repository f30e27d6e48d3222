package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	require.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}

func TestSetLevel(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	SetLevel("debug")
	require.Equal(t, log.DebugLevel, log.GetLevel())

	SetLevel("not-a-level")
	require.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestJSONEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	JSONResponse(c, http.StatusCreated, map[string]string{"card_id": "card1"}, "created")

	var ok map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	require.Equal(t, float64(http.StatusCreated), ok["status"])
	require.Equal(t, "created", ok["message"])
	require.Equal(t, "card1", ok["data"].(map[string]any)["card_id"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	JSONError(c, http.StatusConflict, errors.New("card already listed"), "card already listed")

	var failed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "card already listed", failed["error"])
	require.NotContains(t, failed, "data")
}

func TestJSONError_NilError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	JSONError(c, http.StatusUnauthorized, nil, "unauthorized")

	var body ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, http.StatusUnauthorized, body.Status)
	require.Equal(t, "unauthorized", body.Message)
	require.Equal(t, "unauthorized", body.Error)
}
