package service

import (
	"context"

	"github.com/haythamforever/HonorHub/internal/events/domain"
	"github.com/rs/zerolog"
)

// Logger is a Publisher that writes events to a zerolog logger.
type Logger struct {
	log zerolog.Logger
}

func NewLogger(l zerolog.Logger) *Logger { return &Logger{log: l} }

func (l *Logger) Publish(ctx context.Context, e domain.Event) error {
	ev := l.log.Info().
		Str("type", e.Type).
		Int64("actor_id", e.ActorID).
		Time("ts", e.Time)
	if len(e.Meta) > 0 {
		ev = ev.Fields(map[string]any{"meta": e.Meta})
	}
	ev.Msg("event")
	return nil
}
