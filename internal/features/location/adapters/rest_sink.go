package adapters

import (
	"context"
	"net/http"
	"time"

	"driver-sync/internal/core/transport"
	"driver-sync/internal/features/location/domain"
)

// RESTSink posts samples to the backend.
type RESTSink struct {
	api transport.Sender
}

// NewRESTSink creates a sink sending through api.
func NewRESTSink(api transport.Sender) *RESTSink {
	return &RESTSink{api: api}
}

type samplePayload struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Accuracy   float64 `json:"accuracy"`
	Heading    float64 `json:"heading"`
	Speed      float64 `json:"speed"`
	RecordedAt string  `json:"recorded_at"`
}

// Report sends one sample to update-location.
func (s *RESTSink) Report(ctx context.Context, sample domain.Sample) error {
	req, err := transport.JSON(http.MethodPost, "update-location", samplePayload{
		ID:         sample.ID,
		Lat:        sample.Lat,
		Lng:        sample.Lng,
		Accuracy:   sample.Accuracy,
		Heading:    sample.Heading,
		Speed:      sample.Speed,
		RecordedAt: sample.RecordedAt.UTC().Format(time.DateTime),
	})
	if err != nil {
		return err
	}
	resp, err := s.api.Send(ctx, req)
	if err != nil {
		return err
	}
	return transport.CheckStatus(resp)
}
