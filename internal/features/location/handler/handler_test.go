package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"driver-sync/internal/features/location/adapters"
	"driver-sync/internal/features/location/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockReporter is a mock implementation of ports.ReporterState
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Running() bool {
	return m.Called().Bool(0)
}

func (m *MockReporter) Denied() bool {
	return m.Called().Bool(0)
}

func postFix(body string) *http.Request {
	req := httptest.NewRequest("POST", "/location/fix", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLocationHandler_RecordFixAndStatus(t *testing.T) {
	fixes := adapters.NewLatestFixProvider()
	reporter := new(MockReporter)
	reporter.On("Denied").Return(false)
	reporter.On("Running").Return(true)

	app := fiber.New()
	NewLocationHandler(fixes, reporter).Register(app)

	resp, err := app.Test(postFix(`{"lat":4.65,"lng":-74.05,"accuracy":6,"recorded_at":"2024-05-01T10:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/location/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data domain.Status `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Data.Running)
	require.NotNil(t, out.Data.LastFix)
	assert.Equal(t, 4.65, out.Data.LastFix.Lat)
}

func TestLocationHandler_RecordFixErrors(t *testing.T) {
	t.Run("OutOfRange", func(t *testing.T) {
		reporter := new(MockReporter)
		reporter.On("Denied").Return(false)
		app := fiber.New()
		NewLocationHandler(adapters.NewLatestFixProvider(), reporter).Register(app)

		resp, err := app.Test(postFix(`{"lat":120,"lng":0}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("PermissionDenied", func(t *testing.T) {
		reporter := new(MockReporter)
		reporter.On("Denied").Return(true)
		app := fiber.New()
		NewLocationHandler(adapters.NewLatestFixProvider(), reporter).Register(app)

		resp, err := app.Test(postFix(`{"lat":1,"lng":1}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
