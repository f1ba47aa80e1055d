// Package client holds outbound collaborator clients.
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Notifier publishes vendor workflow events to NATS for consumption by the
// notifications service.
//
// Subject convention: notifications.vendor.<event_type>
// Event types: vendor_submitted, vendor_approval_required, vendor_approved,
//              vendor_declined, vendor_resubmitted
//
// All publish operations are non-fatal — errors are logged but never
// propagated, so notification failures never interrupt workflow transitions.
type Notifier struct {
	conn *nats.Conn
	log  zerolog.Logger
}

// VendorEvent is the JSON schema published to NATS.
type VendorEvent struct {
	EventType  string                 `json:"event_type"`
	VendorID   string                 `json:"vendor_id"`
	ActorEmail string                 `json:"actor_email"`
	Recipients []string               `json:"recipients"`
	Category   string                 `json:"category"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// NewNotifier creates a publisher backed by the given NATS connection. A nil
// connection disables publishing.
func NewNotifier(conn *nats.Conn, log zerolog.Logger) *Notifier {
	return &Notifier{conn: conn, log: log}
}

// PublishVendorEvent publishes one vendor workflow event.
// Subject: notifications.vendor.<eventType>
func (n *Notifier) PublishVendorEvent(ctx context.Context, eventType, vendorID, actorEmail string, recipients []string, payload map[string]interface{}) {
	if n.conn == nil {
		return
	}

	event := &VendorEvent{
		EventType:  eventType,
		VendorID:   vendorID,
		ActorEmail: actorEmail,
		Recipients: recipients,
		Category:   "vendor_onboarding",
		Payload:    payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		n.log.Warn().Err(err).Str("event_type", eventType).Msg("notification: failed to marshal event")
		return
	}

	subject := fmt.Sprintf("notifications.vendor.%s", eventType)
	if err := n.conn.Publish(subject, data); err != nil {
		n.log.Warn().Err(err).
			Str("subject", subject).
			Str("vendor_id", vendorID).
			Msg("notification: failed to publish NATS event (non-fatal)")
		return
	}

	n.log.Debug().
		Str("subject", subject).
		Str("vendor_id", vendorID).
		Int("recipients", len(recipients)).
		Msg("notification: event published")
}
