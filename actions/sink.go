package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/PADAS/gundi-integration-onyesha/client"
)

// Sink receives the positions a pull extracted for an integration.
type Sink interface {
	Send(ctx context.Context, integrationID string, positions []client.Position) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, integrationID string, positions []client.Position) error

// Send calls f.
func (f SinkFunc) Send(ctx context.Context, integrationID string, positions []client.Position) error {
	return f(ctx, integrationID, positions)
}

// LogSink logs a summary line per batch.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a LogSink writing to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Send implements Sink.
func (s *LogSink) Send(_ context.Context, integrationID string, positions []client.Position) error {
	if len(positions) == 0 {
		return nil
	}
	s.logger.Info("observations extracted",
		slog.String("integration_id", integrationID),
		slog.Int64("device_id", positions[0].DeviceID),
		slog.Int("count", len(positions)),
		slog.Time("latest", latest(positions)),
	)
	return nil
}

// JSONSink writes one JSON object per position to w.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink returns a JSONSink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

type jsonLine struct {
	IntegrationID string `json:"integration_id"`
	client.Position
}

// Send implements Sink.
func (s *JSONSink) Send(_ context.Context, integrationID string, positions []client.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range positions {
		if err := s.enc.Encode(jsonLine{IntegrationID: integrationID, Position: p}); err != nil {
			return fmt.Errorf("onyesha/actions: write position: %w", err)
		}
	}
	return nil
}
