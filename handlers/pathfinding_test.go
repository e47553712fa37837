package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"mdp-backend/algorithms"
	"mdp-backend/models"
	"mdp-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	InitPlanning(algorithms.DefaultConfig(), nil, time.Millisecond)
	os.Exit(m.Run())
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decodePath(t *testing.T, raw []byte) models.PathResponse {
	t.Helper()
	var out models.PathResponse
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

const singleObstacleBody = `{"obstacles":[{"x":5,"y":5,"d":4,"id":1}],"retrying":false,"robot_x":1,"robot_y":1,"robot_dir":0}`

func TestHandleStatus(t *testing.T) {
	app := NewApp("*", false)
	status, raw := doRequest(t, app, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"result":"ok"}`, string(raw))
}

func TestHandlePath(t *testing.T) {
	app := NewApp("*", false)

	for _, target := range []string{"/path", "/api/path"} {
		status, raw := doRequest(t, app, http.MethodPost, target, singleObstacleBody)
		require.Equal(t, http.StatusOK, status, string(raw))

		resp := decodePath(t, raw)
		assert.Nil(t, resp.Error)
		require.NotNil(t, resp.Data)
		assert.Equal(t, "FIN", resp.Data.Commands[len(resp.Data.Commands)-1])
		assert.Contains(t, resp.Data.Commands, "SNAP1")
		assert.Equal(t, models.PathPoint{X: 1, Y: 1, D: 0, S: -1}, resp.Data.Path[0])
		assert.Equal(t, models.PathPoint{X: 5, Y: 2, D: 0, S: 1}, resp.Data.Path[len(resp.Data.Path)-1])

		// 실패 응답과 같은 봉투: data와 error 키가 항상 존재
		var envelope map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &envelope))
		assert.Equal(t, "null", string(envelope["error"]))
	}
}

func TestHandlePath_Errors(t *testing.T) {
	app := NewApp("*", false)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"obstacles":`, http.StatusBadRequest},
		{"bad robot heading", `{"obstacles":[],"robot_x":1,"robot_y":1,"robot_dir":3}`, http.StatusBadRequest},
		{"start out of bounds", `{"obstacles":[],"robot_x":0,"robot_y":0,"robot_dir":0}`, http.StatusBadRequest},
		{"clearance conflict",
			`{"obstacles":[{"x":5,"y":5,"d":0,"id":1},{"x":5,"y":10,"d":4,"id":2}],"robot_x":1,"robot_y":1,"robot_dir":0}`,
			http.StatusBadRequest},
		{"bad big_turn", `{"obstacles":[],"robot_x":1,"robot_y":1,"robot_dir":0,"big_turn":9}`, http.StatusBadRequest},
		{"unreachable view",
			`{"obstacles":[{"x":5,"y":18,"d":0,"id":1}],"robot_x":1,"robot_y":1,"robot_dir":0}`,
			http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := doRequest(t, app, http.MethodPost, "/path", tt.body)
			assert.Equal(t, tt.status, status, string(raw))

			resp := decodePath(t, raw)
			assert.Nil(t, resp.Data)
			require.NotNil(t, resp.Error)
			assert.NotEmpty(t, *resp.Error)
		})
	}
}

func TestHandlePath_NoObstacles(t *testing.T) {
	app := NewApp("*", false)
	status, raw := doRequest(t, app, http.MethodPost, "/path",
		`{"obstacles":[],"robot_x":1,"robot_y":1,"robot_dir":0}`)
	require.Equal(t, http.StatusOK, status)

	resp := decodePath(t, raw)
	require.NotNil(t, resp.Data)
	assert.Equal(t, []string{"FIN"}, resp.Data.Commands)
	assert.Equal(t, []models.PathPoint{{X: 1, Y: 1, D: 0, S: -1}}, resp.Data.Path)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("wrap: %w", algorithms.ErrInvalidObstaclePlacement), fiber.StatusBadRequest},
		{algorithms.ErrInvalidStartPose, fiber.StatusBadRequest},
		{services.ErrBadRequest, fiber.StatusBadRequest},
		{algorithms.ErrUnreachableObstacle, fiber.StatusUnprocessableEntity},
		{algorithms.ErrNoPathFound, fiber.StatusUnprocessableEntity},
		{algorithms.ErrTooManyObstacles, fiber.StatusUnprocessableEntity},
		{algorithms.ErrSearchBudgetExceeded, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("plan: %w", context.DeadlineExceeded), fiber.StatusGatewayTimeout},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusForError(tt.err), tt.err.Error())
	}
}

func TestHandleSimulate(t *testing.T) {
	app := NewApp("*", false)
	t.Cleanup(simulator.Stop)

	status, raw := doRequest(t, app, http.MethodPost, "/api/simulate", singleObstacleBody)
	require.Equal(t, http.StatusAccepted, status, string(raw))
	resp := decodePath(t, raw)
	require.NotNil(t, resp.Data)

	require.Eventually(t, func() bool {
		return !simulator.GetStatus()["running"].(bool)
	}, 2*time.Second, 5*time.Millisecond)

	status, raw = doRequest(t, app, http.MethodGet, "/api/simulate/status", "")
	assert.Equal(t, http.StatusOK, status)
	var body struct {
		Success bool           `json:"success"`
		Status  map[string]any `json:"status"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Success)
	assert.Equal(t, resp.Data.PlanID, body.Status["plan_id"])

	status, _ = doRequest(t, app, http.MethodPost, "/api/simulate/stop", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestHandleScenario(t *testing.T) {
	app := NewApp("*", false)
	scenarios.Clear()

	status, _ := doRequest(t, app, http.MethodGet, "/api/scenario", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, app, http.MethodGet, "/api/scenario/random?n=0", "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doRequest(t, app, http.MethodGet, "/api/scenario/random?n=abc", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw := doRequest(t, app, http.MethodGet, "/api/scenario/random?n=4&seed=5", "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var body struct {
		Scenario services.Scenario `json:"scenario"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Len(t, body.Scenario.Request.Obstacles, 4)
	assert.Equal(t, int64(5), body.Scenario.Seed)

	status, raw = doRequest(t, app, http.MethodGet, "/api/scenario", "")
	require.Equal(t, http.StatusOK, status)
	var active struct {
		Scenario services.Scenario `json:"scenario"`
	}
	require.NoError(t, json.Unmarshal(raw, &active))
	assert.Equal(t, body.Scenario.ID, active.Scenario.ID)
}
