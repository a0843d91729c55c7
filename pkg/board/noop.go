package board

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink discards every event
type NoopEventSink struct{}

func NewNoopEventSink() *NoopEventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) PostCreated(ctx context.Context, post *Post) error {
	return nil
}

func (n *NoopEventSink) PostUpdated(ctx context.Context, post *Post) error {
	return nil
}

func (n *NoopEventSink) PostDeleted(ctx context.Context, postID uuid.UUID) error {
	return nil
}

// LoggingEventSink writes every event to a structured logger
type LoggingEventSink struct {
	logger *slog.Logger
}

func NewLoggingEventSink(logger *slog.Logger) *LoggingEventSink {
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) PostCreated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post created", "post_id", post.ID, "author_id", post.AuthorID, "category_id", post.CategoryID)
	return nil
}

func (l *LoggingEventSink) PostUpdated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post updated", "post_id", post.ID)
	return nil
}

func (l *LoggingEventSink) PostDeleted(ctx context.Context, postID uuid.UUID) error {
	l.logger.InfoContext(ctx, "post deleted", "post_id", postID)
	return nil
}
