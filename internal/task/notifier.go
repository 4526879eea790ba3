package task

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chayma544/BookMate-back/internal/domain"
)

// Notification is a message telling a requester that one of their requests
// reached a terminal status.
type Notification struct {
	RecipientID uuid.UUID
	RequestID   uuid.UUID
	BookTitle   string
	Status      domain.RequestStatus
}

// Notifier delivers notifications to users. Implementations decide the
// channel; delivery is best-effort and happens outside the decision
// transaction.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log. It stands in for a
// push or email channel in deployments that have none configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a Notifier that records deliveries via logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With("component", "log_notifier"),
	}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	n.logger.InfoContext(ctx, "request decision notification",
		"recipient_id", msg.RecipientID,
		"request_id", msg.RequestID,
		"book_title", msg.BookTitle,
		"status", string(msg.Status))
	return nil
}

// Ensure LogNotifier implements Notifier
var _ Notifier = (*LogNotifier)(nil)
