package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/flex"
	"driver-sync/internal/features/notifications/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGateway is a mock implementation of ports.NotificationGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) List(ctx context.Context, filter domain.Filter, page, perPage int) ([]domain.Notification, error) {
	args := m.Called(ctx, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockGateway) MarkAllAsRead(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) MarkAsRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) RegisterDevice(ctx context.Context, deviceToken string) error {
	return m.Called(ctx, deviceToken).Error(0)
}

// MockSession is a mock implementation of ports.SessionState
type MockSession struct {
	mock.Mock
}

func (m *MockSession) IsLoggedIn(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockSession) DeviceToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSession) SetDeviceToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(gw *MockGateway, session *MockSession) *Service {
	s := NewService(gw, session, 2, false)
	s.now = func() time.Time { return fixedNow }
	return s
}

func unread(ids ...string) []domain.Notification {
	out := make([]domain.Notification, len(ids))
	for i, id := range ids {
		out[i] = domain.Notification{ID: flex.ID(id), Title: "n" + id}
	}
	return out
}

func TestService_EmptyFirstPage(t *testing.T) {
	gw := new(MockGateway)
	s := newService(gw, new(MockSession))
	ctx := context.Background()
	gw.On("List", mock.Anything, domain.FilterUnread, 1, 2).Return([]domain.Notification{}, nil).Once()

	state, err := s.List(ctx, domain.FilterUnread, false)
	require.NoError(t, err)
	assert.True(t, state.Empty)
	assert.False(t, state.Cursor.Exhausted)
	assert.Empty(t, state.Items)

	// Nothing more to page through after an empty page 1.
	state, err = s.Next(ctx, domain.FilterUnread)
	require.NoError(t, err)
	assert.True(t, state.Empty)
	gw.AssertNumberOfCalls(t, "List", 1)
}

func TestService_Paging(t *testing.T) {
	gw := new(MockGateway)
	s := newService(gw, new(MockSession))
	ctx := context.Background()
	gw.On("List", mock.Anything, domain.FilterAll, 1, 2).Return(unread("1", "2"), nil).Once()
	gw.On("List", mock.Anything, domain.FilterAll, 2, 2).Return(unread("3"), nil).Once()
	gw.On("List", mock.Anything, domain.FilterAll, 3, 2).Return([]domain.Notification{}, nil).Once()

	_, err := s.List(ctx, domain.FilterAll, false)
	require.NoError(t, err)
	// A second List without refresh keeps what is loaded.
	_, err = s.List(ctx, domain.FilterAll, false)
	require.NoError(t, err)

	state, err := s.Next(ctx, domain.FilterAll)
	require.NoError(t, err)
	assert.Len(t, state.Items, 3)
	assert.False(t, state.Cursor.Exhausted)

	state, err = s.Next(ctx, domain.FilterAll)
	require.NoError(t, err)
	assert.True(t, state.Cursor.Exhausted)
	assert.Len(t, state.Items, 3)
	gw.AssertExpectations(t)
}

func TestService_MarkAllAsRead(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		gw := new(MockGateway)
		s := newService(gw, new(MockSession))
		ctx := context.Background()
		gw.On("List", mock.Anything, domain.FilterAll, 1, 2).Return(unread("1", "2"), nil).Once()
		gw.On("MarkAllAsRead", mock.Anything).Return(nil).Once()

		_, err := s.List(ctx, domain.FilterAll, false)
		require.NoError(t, err)
		assert.Equal(t, 2, s.UnreadCount())

		require.NoError(t, s.MarkAllAsRead(ctx))
		for _, n := range s.All().Items {
			assert.True(t, n.Read())
			assert.Equal(t, fixedNow, n.ReadAt.Time)
		}
		assert.Equal(t, 0, s.UnreadCount())
	})

	t.Run("ServerRefuses", func(t *testing.T) {
		gw := new(MockGateway)
		s := newService(gw, new(MockSession))
		ctx := context.Background()
		gw.On("List", mock.Anything, domain.FilterAll, 1, 2).Return(unread("1"), nil).Once()
		gw.On("MarkAllAsRead", mock.Anything).Return(apierror.Connectivity(errors.New("dial tcp"))).Once()

		_, err := s.List(ctx, domain.FilterAll, false)
		require.NoError(t, err)

		err = s.MarkAllAsRead(ctx)
		assert.ErrorIs(t, err, apierror.ErrConnectivity)
		assert.Equal(t, 1, s.UnreadCount())
	})
}

func TestService_MarkAsRead(t *testing.T) {
	gw := new(MockGateway)
	s := newService(gw, new(MockSession))
	ctx := context.Background()
	gw.On("List", mock.Anything, domain.FilterUnread, 1, 2).Return(unread("1", "2"), nil).Once()
	gw.On("MarkAsRead", mock.Anything, "2").Return(nil).Once()

	_, err := s.List(ctx, domain.FilterUnread, false)
	require.NoError(t, err)
	require.NoError(t, s.MarkAsRead(ctx, "2"))

	items := s.Unread().Items
	assert.False(t, items[0].Read())
	assert.True(t, items[1].Read())
	assert.Equal(t, 1, s.UnreadCount())

	assert.ErrorIs(t, s.MarkAsRead(ctx, ""), apierror.ErrValidation)
}

func TestService_HandlePush(t *testing.T) {
	msg := domain.PushMessage{Title: "New route", RouteID: "42"}

	t.Run("LoggedInRegistersDevice", func(t *testing.T) {
		gw := new(MockGateway)
		session := new(MockSession)
		s := newService(gw, session)
		session.On("IsLoggedIn", mock.Anything).Return(true, nil).Once()
		gw.On("RegisterDevice", mock.Anything, "fcm-1").Return(nil).Once()
		session.On("SetDeviceToken", mock.Anything, "fcm-1").Return(nil).Once()

		res, err := s.HandlePush(context.Background(), msg, "fcm-1")
		require.NoError(t, err)
		assert.Equal(t, "42", res.RouteID)
		assert.True(t, res.Registered)
		gw.AssertExpectations(t)
		session.AssertExpectations(t)
	})

	t.Run("UsesStoredToken", func(t *testing.T) {
		gw := new(MockGateway)
		session := new(MockSession)
		s := newService(gw, session)
		session.On("IsLoggedIn", mock.Anything).Return(true, nil).Once()
		session.On("DeviceToken", mock.Anything).Return("fcm-stored", nil).Once()
		gw.On("RegisterDevice", mock.Anything, "fcm-stored").Return(nil).Once()
		session.On("SetDeviceToken", mock.Anything, "fcm-stored").Return(nil).Once()

		res, err := s.HandlePush(context.Background(), msg, "")
		require.NoError(t, err)
		assert.True(t, res.Registered)
	})

	t.Run("LoggedOutOnlyReturnsHint", func(t *testing.T) {
		gw := new(MockGateway)
		session := new(MockSession)
		s := newService(gw, session)
		session.On("IsLoggedIn", mock.Anything).Return(false, nil).Once()

		res, err := s.HandlePush(context.Background(), msg, "fcm-1")
		require.NoError(t, err)
		assert.Equal(t, "42", res.RouteID)
		assert.False(t, res.Registered)
		gw.AssertNotCalled(t, "RegisterDevice", mock.Anything, mock.Anything)
	})

	t.Run("RegistrationFailureKeepsHint", func(t *testing.T) {
		gw := new(MockGateway)
		session := new(MockSession)
		s := newService(gw, session)
		session.On("IsLoggedIn", mock.Anything).Return(true, nil).Once()
		gw.On("RegisterDevice", mock.Anything, "fcm-1").Return(apierror.Connectivity(errors.New("timeout"))).Once()

		res, err := s.HandlePush(context.Background(), msg, "fcm-1")
		require.NoError(t, err)
		assert.Equal(t, "42", res.RouteID)
		assert.False(t, res.Registered)
		session.AssertNotCalled(t, "SetDeviceToken", mock.Anything, mock.Anything)
	})

	t.Run("StorageErrorPropagates", func(t *testing.T) {
		session := new(MockSession)
		s := newService(new(MockGateway), session)
		session.On("IsLoggedIn", mock.Anything).Return(false, apierror.Storage("failed to read session", errors.New("disk"))).Once()

		_, err := s.HandlePush(context.Background(), msg, "fcm-1")
		assert.ErrorIs(t, err, apierror.ErrStorage)
	})
}
