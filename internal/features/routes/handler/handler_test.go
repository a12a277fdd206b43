package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/feed"
	"driver-sync/internal/features/routes/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLifecycle is a mock implementation of ports.LifecycleService
type MockLifecycle struct {
	mock.Mock
}

func routeResult(args mock.Arguments) (*domain.Route, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *MockLifecycle) Route(routeID string) (domain.Route, bool) {
	args := m.Called(routeID)
	return args.Get(0).(domain.Route), args.Bool(1)
}

func (m *MockLifecycle) Refresh(ctx context.Context, routeID string) (*domain.Route, error) {
	return routeResult(m.Called(ctx, routeID))
}

func (m *MockLifecycle) Accept(ctx context.Context, routeID string) (*domain.Route, error) {
	return routeResult(m.Called(ctx, routeID))
}

func (m *MockLifecycle) Start(ctx context.Context, routeID string) (*domain.Route, error) {
	return routeResult(m.Called(ctx, routeID))
}

func (m *MockLifecycle) Complete(ctx context.Context, routeID string) (*domain.Route, error) {
	return routeResult(m.Called(ctx, routeID))
}

func (m *MockLifecycle) Cancel(ctx context.Context, routeID string) (*domain.Route, error) {
	return routeResult(m.Called(ctx, routeID))
}

func (m *MockLifecycle) MarkDelivered(ctx context.Context, routeID, waypointID string, deliveredType domain.DeliveredType) (*domain.Route, error) {
	return routeResult(m.Called(ctx, routeID, waypointID, deliveredType))
}

func (m *MockLifecycle) MarkFailed(ctx context.Context, routeID, waypointID, reasonID, photoRef string) (*domain.Route, error) {
	return routeResult(m.Called(ctx, routeID, waypointID, reasonID, photoRef))
}

// MockFeeds is a mock implementation of ports.FeedService
type MockFeeds struct {
	mock.Mock
}

func (m *MockFeeds) Available(ctx context.Context, q domain.AvailableQuery, refresh bool) (feed.State[domain.Route], error) {
	args := m.Called(ctx, q, refresh)
	return args.Get(0).(feed.State[domain.Route]), args.Error(1)
}

func (m *MockFeeds) NextAvailable(ctx context.Context) (feed.State[domain.Route], error) {
	args := m.Called(ctx)
	return args.Get(0).(feed.State[domain.Route]), args.Error(1)
}

func (m *MockFeeds) Accepted(ctx context.Context, refresh bool) (feed.State[domain.Route], error) {
	args := m.Called(ctx, refresh)
	return args.Get(0).(feed.State[domain.Route]), args.Error(1)
}

func (m *MockFeeds) NextAccepted(ctx context.Context) (feed.State[domain.Route], error) {
	args := m.Called(ctx)
	return args.Get(0).(feed.State[domain.Route]), args.Error(1)
}

// MockOffline is a mock implementation of ports.OfflineReader
type MockOffline struct {
	mock.Mock
}

func (m *MockOffline) Get(ctx context.Context, routeID string) (*domain.MirrorDocument, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MirrorDocument), args.Error(1)
}

type fixture struct {
	app       *fiber.App
	lifecycle *MockLifecycle
	feeds     *MockFeeds
	offline   *MockOffline
}

func setup() fixture {
	f := fixture{
		app:       fiber.New(),
		lifecycle: new(MockLifecycle),
		feeds:     new(MockFeeds),
		offline:   new(MockOffline),
	}
	NewRouteHandler(f.lifecycle, f.feeds, f.offline).Register(f.app)
	return f
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func postJSON(path string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRouteHandler_GetAvailable(t *testing.T) {
	t.Run("ParsesFilter", func(t *testing.T) {
		f := setup()
		q := domain.AvailableQuery{Date: "2024-05-01", Radius: 5, Lat: 4.6, Lng: -74.08}
		state := feed.State[domain.Route]{
			Items:  []domain.Route{{ID: "1", Status: domain.StatusAvailable}},
			Cursor: feed.Cursor{Page: 1, PageSize: 10},
		}
		f.feeds.On("Available", mock.Anything, q, true).Return(state, nil).Once()

		resp, err := f.app.Test(httptest.NewRequest("GET", "/routes/available?date=2024-05-01&radius=5&lat=4.6&lng=-74.08&refresh=true", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := decode(t, resp)["data"].(map[string]any)
		assert.Len(t, data["items"], 1)
		f.feeds.AssertExpectations(t)
	})

	t.Run("BadNumber", func(t *testing.T) {
		f := setup()
		resp, err := f.app.Test(httptest.NewRequest("GET", "/routes/available?radius=far", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		f.feeds.AssertNotCalled(t, "Available", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("FetchErrorKeepsItems", func(t *testing.T) {
		f := setup()
		state := feed.State[domain.Route]{
			Items: []domain.Route{{ID: "1"}},
			Err:   "No internet connection",
		}
		f.feeds.On("Available", mock.Anything, domain.AvailableQuery{}, false).
			Return(state, apierror.Connectivity(errors.New("dial tcp"))).Once()

		resp, err := f.app.Test(httptest.NewRequest("GET", "/routes/available", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		out := decode(t, resp)
		assert.Equal(t, "No internet connection", out["message"])
		assert.Len(t, out["data"].(map[string]any)["items"], 1)
	})

	t.Run("SessionExpired", func(t *testing.T) {
		f := setup()
		f.feeds.On("Available", mock.Anything, mock.Anything, mock.Anything).
			Return(feed.State[domain.Route]{}, apierror.FromResponse(http.StatusUnauthorized, []byte(`{"message":"Unauthenticated."}`))).Once()

		resp, err := f.app.Test(httptest.NewRequest("GET", "/routes/available", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRouteHandler_Pages(t *testing.T) {
	f := setup()
	exhausted := feed.State[domain.Route]{Cursor: feed.Cursor{Page: 1, Exhausted: true}}
	f.feeds.On("NextAvailable", mock.Anything).Return(exhausted, nil).Once()
	f.feeds.On("Accepted", mock.Anything, false).Return(feed.State[domain.Route]{Empty: true}, nil).Once()
	f.feeds.On("NextAccepted", mock.Anything).Return(exhausted, nil).Once()

	resp, err := f.app.Test(httptest.NewRequest("POST", "/routes/available/next", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cursor := decode(t, resp)["data"].(map[string]any)["cursor"].(map[string]any)
	assert.Equal(t, true, cursor["no_more_available"])

	resp, err = f.app.Test(httptest.NewRequest("GET", "/routes/accepted", nil))
	require.NoError(t, err)
	assert.Equal(t, true, decode(t, resp)["data"].(map[string]any)["empty"])

	resp, err = f.app.Test(httptest.NewRequest("POST", "/routes/accepted/next", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	f.feeds.AssertExpectations(t)
}

func TestRouteHandler_GetRoute(t *testing.T) {
	offlineErr := apierror.Connectivity(errors.New("dial tcp"))

	t.Run("Online", func(t *testing.T) {
		f := setup()
		f.lifecycle.On("Refresh", mock.Anything, "42").Return(&domain.Route{ID: "42", Status: domain.StatusAccepted}, nil).Once()

		resp, err := f.app.Test(httptest.NewRequest("GET", "/routes/42", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "accepted", decode(t, resp)["data"].(map[string]any)["status"])
	})

	t.Run("OfflineServesTrackedRoute", func(t *testing.T) {
		f := setup()
		f.lifecycle.On("Refresh", mock.Anything, "42").Return(nil, offlineErr).Once()
		f.lifecycle.On("Route", "42").Return(domain.Route{ID: "42", Status: domain.StatusInTransit}, true).Once()

		resp, err := f.app.Test(httptest.NewRequest("GET", "/routes/42", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "offline copy", decode(t, resp)["message"])
		f.offline.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("OfflineServesMirror", func(t *testing.T) {
		f := setup()
		f.lifecycle.On("Refresh", mock.Anything, "42").Return(nil, offlineErr).Once()
		f.lifecycle.On("Route", "42").Return(domain.Route{}, false).Once()
		f.offline.On("Get", mock.Anything, "42").Return(&domain.MirrorDocument{RouteID: "42", Status: domain.StatusAccepted}, nil).Once()

		resp, err := f.app.Test(httptest.NewRequest("GET", "/routes/42", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "offline copy", decode(t, resp)["message"])
	})

	t.Run("OfflineNothingKnown", func(t *testing.T) {
		f := setup()
		f.lifecycle.On("Refresh", mock.Anything, "42").Return(nil, offlineErr).Once()
		f.lifecycle.On("Route", "42").Return(domain.Route{}, false).Once()
		f.offline.On("Get", mock.Anything, "42").Return(nil, errors.New("missing")).Once()

		resp, err := f.app.Test(httptest.NewRequest("GET", "/routes/42", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "connectivity", decode(t, resp)["kind"])
	})

	t.Run("NotFound", func(t *testing.T) {
		f := setup()
		f.lifecycle.On("Refresh", mock.Anything, "7").Return(nil, domain.ErrRouteNotFound).Once()

		resp, err := f.app.Test(httptest.NewRequest("GET", "/routes/7", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRouteHandler_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		method string
		result *domain.Route
		err    error
		status int
	}{
		{"Accept", "/routes/42/accept", "Accept", &domain.Route{ID: "42", Status: domain.StatusAccepted}, nil, http.StatusOK},
		{"StartIllegal", "/routes/42/start", "Start", nil, domain.ErrIllegalTransition, http.StatusConflict},
		{"CompleteInFlight", "/routes/42/complete", "Complete", nil, domain.ErrTransitionInFlight, http.StatusConflict},
		{"CancelRejected", "/routes/42/cancel", "Cancel", nil, apierror.Validation("Route already started"), http.StatusUnprocessableEntity},
		{"AcceptOffline", "/routes/42/accept", "Accept", nil, apierror.Connectivity(errors.New("timeout")), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup()
			call := f.lifecycle.On(tt.method, mock.Anything, "42")
			if tt.result != nil {
				call.Return(tt.result, nil).Once()
			} else {
				call.Return(nil, tt.err).Once()
			}

			resp, err := f.app.Test(httptest.NewRequest("POST", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			f.lifecycle.AssertExpectations(t)
		})
	}
}

func TestRouteHandler_Waypoints(t *testing.T) {
	t.Run("Delivered", func(t *testing.T) {
		f := setup()
		f.lifecycle.On("MarkDelivered", mock.Anything, "42", "w1", domain.DeliveredRecipient).
			Return(&domain.Route{ID: "42", Status: domain.StatusInTransit}, nil).Once()

		resp, err := f.app.Test(postJSON("/routes/42/waypoints/w1/delivered", DeliveredRequest{Type: domain.DeliveredRecipient}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		f.lifecycle.AssertExpectations(t)
	})

	t.Run("DeliveredBadType", func(t *testing.T) {
		f := setup()
		f.lifecycle.On("MarkDelivered", mock.Anything, "42", "w1", domain.DeliveredType("drone")).
			Return(nil, domain.ErrInvalidDeliveredType).Once()

		resp, err := f.app.Test(postJSON("/routes/42/waypoints/w1/delivered", map[string]string{"type": "drone"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("FailedNeedsReason", func(t *testing.T) {
		f := setup()
		f.lifecycle.On("MarkFailed", mock.Anything, "42", "w1", "", "").
			Return(nil, domain.ErrMissingFailureReason).Once()

		resp, err := f.app.Test(postJSON("/routes/42/waypoints/w1/failed", FailedRequest{}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Failed", func(t *testing.T) {
		f := setup()
		f.lifecycle.On("MarkFailed", mock.Anything, "42", "w1", "3", "photos/a.jpg").
			Return(&domain.Route{ID: "42", Status: domain.StatusInTransit}, nil).Once()

		resp, err := f.app.Test(postJSON("/routes/42/waypoints/w1/failed", FailedRequest{ReasonID: "3", Photo: "photos/a.jpg"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Waypoint marked as failed", decode(t, resp)["message"])
	})
}
