package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/transport"
	"driver-sync/internal/features/location/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestFixProvider(t *testing.T) {
	p := NewLatestFixProvider()
	p.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	_, err := p.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrNoFix)

	assert.ErrorIs(t, p.Record(domain.Fix{Lat: 91}), domain.ErrInvalidFix)
	require.NoError(t, p.Record(domain.Fix{Lat: 4.65, Lng: -74.05, Accuracy: 8}))

	first, err := p.Current(ctx)
	require.NoError(t, err)
	second, err := p.Current(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4.65, first.Lat)
	assert.Equal(t, 2024, first.RecordedAt.Year())
	assert.NotEqual(t, first.ID, second.ID)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)
}

func TestStaticAuthorizer(t *testing.T) {
	assert.True(t, NewStaticAuthorizer(true).Authorized(context.Background()))
	assert.False(t, NewStaticAuthorizer(false).Authorized(context.Background()))
}

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, bool, error) {
	return string(s), s != "", nil
}

func (s staticTokens) StoreToken(ctx context.Context, token string) error {
	return nil
}

func newSink(t *testing.T, h http.HandlerFunc) *RESTSink {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	api, err := transport.New(srv.URL, srv.Client(), staticTokens("tok"))
	require.NoError(t, err)
	return NewRESTSink(api)
}

func TestRESTSink_Report(t *testing.T) {
	sample := domain.Sample{
		ID: "3f7c9a2e-5d1b-4c8e-9a6f-2b4d8e1c7a90",
		Fix: domain.Fix{
			Lat: 4.65, Lng: -74.05, Accuracy: 5, Heading: 90, Speed: 12.5,
			RecordedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	t.Run("Success", func(t *testing.T) {
		sink := newSink(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/update-location", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			raw, _ := io.ReadAll(r.Body)
			var body map[string]any
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, sample.ID, body["id"])
			assert.Equal(t, 12.5, body["speed"])
			assert.Equal(t, "2024-05-01 10:00:00", body["recorded_at"])
			w.Write([]byte(`{"message":"Location updated"}`))
		})

		require.NoError(t, sink.Report(context.Background(), sample))
	})

	t.Run("ServerError", func(t *testing.T) {
		sink := newSink(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		err := sink.Report(context.Background(), sample)
		assert.ErrorIs(t, err, apierror.ErrServer)
	})
}
