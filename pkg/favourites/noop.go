package favourites

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful for production when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// ListCreated does nothing and returns nil
func (n *NoopEventSink) ListCreated(ctx context.Context, list *List) error {
	return nil
}

// ListUpdated does nothing and returns nil
func (n *NoopEventSink) ListUpdated(ctx context.Context, list *List) error {
	return nil
}

// ListDeleted does nothing and returns nil
func (n *NoopEventSink) ListDeleted(ctx context.Context, listID uuid.UUID) error {
	return nil
}

// ItemAdded does nothing and returns nil
func (n *NoopEventSink) ItemAdded(ctx context.Context, item *Item) error {
	return nil
}

// ItemRemoved does nothing and returns nil
func (n *NoopEventSink) ItemRemoved(ctx context.Context, item *Item) error {
	return nil
}

// ItemsReordered does nothing and returns nil
func (n *NoopEventSink) ItemsReordered(ctx context.Context, listID uuid.UUID) error {
	return nil
}

// LoggingEventSink is an event sink that logs events but takes no other
// action. Useful for development and debugging.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates an event sink writing structured log records
// to the given logger. A nil logger falls back to slog.Default.
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) ListCreated(ctx context.Context, list *List) error {
	l.logger.InfoContext(ctx, "list created",
		slog.String("list_id", list.ID.String()),
		slog.String("title", list.Title),
		slog.String("creator_id", list.CreatorID.String()))
	return nil
}

func (l *LoggingEventSink) ListUpdated(ctx context.Context, list *List) error {
	l.logger.InfoContext(ctx, "list updated",
		slog.String("list_id", list.ID.String()),
		slog.String("title", list.Title))
	return nil
}

func (l *LoggingEventSink) ListDeleted(ctx context.Context, listID uuid.UUID) error {
	l.logger.InfoContext(ctx, "list deleted", slog.String("list_id", listID.String()))
	return nil
}

func (l *LoggingEventSink) ItemAdded(ctx context.Context, item *Item) error {
	l.logger.InfoContext(ctx, "item added",
		slog.String("item_id", item.ID.String()),
		slog.String("list_id", item.ListID.String()),
		slog.String("ref", item.Ref.String()),
		slog.String("added_by", item.AddedByID.String()))
	return nil
}

func (l *LoggingEventSink) ItemRemoved(ctx context.Context, item *Item) error {
	l.logger.InfoContext(ctx, "item removed",
		slog.String("item_id", item.ID.String()),
		slog.String("list_id", item.ListID.String()),
		slog.String("ref", item.Ref.String()))
	return nil
}

func (l *LoggingEventSink) ItemsReordered(ctx context.Context, listID uuid.UUID) error {
	l.logger.InfoContext(ctx, "items reordered", slog.String("list_id", listID.String()))
	return nil
}
