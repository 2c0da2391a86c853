package dispatcher

import (
	"context"

	"github.com/garyjia/surat-menyurat/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name        string
	EventType   event.Type
	Handler     Handler
	Description string
}

// CCRecipient is a cc member to be told about an approved letter.
type CCRecipient struct {
	MemberID string
	Name     string
	Email    string
}

// CCResolver maps cc member ids to recipients.
type CCResolver func(ctx context.Context, memberIDs []string) ([]CCRecipient, error)

// NewCCNotifyHandler logs the cc recipients of a newly approved letter.
// Delivery beyond the log line is left to whoever tails it.
func NewCCNotifyHandler(logger Logger, resolve CCResolver) Handler {
	return func(ctx context.Context, evt *event.Event) error {
		ids := evt.GetPayloadStrings("cc")
		if len(ids) == 0 {
			return nil
		}

		recipients, err := resolve(ctx, ids)
		if err != nil {
			return err
		}

		for _, r := range recipients {
			logger.Info("Tembusan notification",
				"letter_id", evt.LetterID,
				"reference_number", evt.GetPayloadString("referenceNumber"),
				"member_id", r.MemberID,
				"name", r.Name,
				"email", r.Email,
			)
		}
		return nil
	}
}

// auditCounters are the numeric payload keys copied into audit lines
var auditCounters = []string{"steps", "order", "signatures"}

// NewAuditLogHandler logs every transition it is subscribed to.
func NewAuditLogHandler(logger Logger) Handler {
	return func(ctx context.Context, evt *event.Event) error {
		kv := []interface{}{
			"event_type", evt.Type,
			"letter_id", evt.LetterID,
			"actor_id", evt.ActorID,
		}
		if ref := evt.GetPayloadString("referenceNumber"); ref != "" {
			kv = append(kv, "reference_number", ref)
		}
		for _, key := range auditCounters {
			if _, ok := evt.Payload[key]; ok {
				kv = append(kv, key, evt.GetPayloadInt(key))
			}
		}
		logger.Info("Letter transition", kv...)
		return nil
	}
}
