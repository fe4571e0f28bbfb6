// Package alert delivers operator alerts raised on the system:alert
// notification channel to external webhooks. Repeats of the same kind
// on the same chain are suppressed for a cooldown window so a flapping
// condition cannot flood the destination.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/notifier"
)

// KindReconcileMismatch is published by the reconciliation audit. The
// remaining kinds on the channel are model.SystemEventKind values from
// reduced contract events.
const KindReconcileMismatch = "reconciliation-mismatch"

// Alert is one operator notification bound for external channels.
type Alert struct {
	Kind    string
	ChainID int64
	Title   string
	Message string
	Fields  map[string]string
}

// Alerter is the interface for sending alerts.
type Alerter interface {
	Send(ctx context.Context, alert Alert) error
}

// MultiAlerter fans out alerts to multiple channels with cooldown dedup
// keyed by kind and chain.
type MultiAlerter struct {
	alerters []Alerter
	cooldown time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewMultiAlerter(cooldown time.Duration, logger *slog.Logger, alerters ...Alerter) *MultiAlerter {
	return &MultiAlerter{
		alerters: alerters,
		cooldown: cooldown,
		logger:   logger.With("component", "alerter"),
		lastSent: make(map[string]time.Time),
	}
}

func cooldownKey(a Alert) string {
	return fmt.Sprintf("%s:%d", a.Kind, a.ChainID)
}

// Send dispatches the alert to all channels, respecting cooldown.
func (m *MultiAlerter) Send(ctx context.Context, alert Alert) error {
	key := cooldownKey(alert)

	m.mu.Lock()
	if last, ok := m.lastSent[key]; ok && time.Since(last) < m.cooldown {
		m.mu.Unlock()
		m.logger.Debug("alert suppressed by cooldown", "key", key)
		for _, a := range m.alerters {
			metrics.AlertsCooldownSkipped.WithLabelValues(alerterName(a), alert.Kind).Inc()
		}
		return nil
	}
	m.lastSent[key] = time.Now()
	m.mu.Unlock()

	var firstErr error
	for _, a := range m.alerters {
		if err := a.Send(ctx, alert); err != nil {
			m.logger.Warn("alert send failed",
				"channel", alerterName(a),
				"kind", alert.Kind,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		} else {
			metrics.AlertsSentTotal.WithLabelValues(alerterName(a), alert.Kind).Inc()
		}
	}
	return firstErr
}

func alerterName(a Alerter) string {
	switch a.(type) {
	case *SlackAlerter:
		return "slack"
	case *WebhookAlerter:
		return "webhook"
	default:
		return "unknown"
	}
}

// Subscribe registers the alerter on the notifier's system:alert
// channel, so every publication there becomes an outbound alert.
func Subscribe(n *notifier.Notifier, a Alerter) notifier.Subscription {
	return n.Subscribe(notifier.ChannelSystemAlert, func(ctx context.Context, note notifier.Notification) error {
		return a.Send(ctx, fromNotification(note))
	})
}

// fromNotification maps a system:alert publication onto an Alert. The
// kind and chain_id fields become the cooldown identity; everything
// else rides along stringified.
func fromNotification(note notifier.Notification) Alert {
	al := Alert{Kind: "unknown", Fields: make(map[string]string)}
	for k, v := range note.Fields {
		switch k {
		case "kind":
			al.Kind = fmt.Sprint(v)
		case "chain_id":
			switch id := v.(type) {
			case model.ChainID:
				al.ChainID = int64(id)
			case int64:
				al.ChainID = id
			case int:
				al.ChainID = int64(id)
			case float64:
				al.ChainID = int64(id)
			default:
				al.Fields[k] = fmt.Sprint(v)
			}
		default:
			al.Fields[k] = fmt.Sprint(v)
		}
	}
	al.Title, al.Message = describe(al.Kind)
	return al
}

func describe(kind string) (title, message string) {
	switch kind {
	case KindReconcileMismatch:
		return "Aggregate reconciliation mismatch", "Stored strategy aggregates diverged from the ground tables"
	case string(model.SystemEventEmergencyPause):
		return "Emergency pause engaged", "The contract halted all strategy execution"
	case string(model.SystemEventEmergencyUnpause):
		return "Emergency pause lifted", "The contract resumed strategy execution"
	case string(model.SystemEventDexApproval):
		return "DEX approval changed", "A DEX allowance on the contract was changed"
	case string(model.SystemEventExecutorRotated):
		return "Executor rotated", "The contract's executor key was rotated"
	default:
		return "System alert", "An unclassified system alert was raised"
	}
}

// SlackAlerter sends alerts to a Slack incoming webhook.
type SlackAlerter struct {
	webhookURL string
	client     *http.Client
}

func NewSlackAlerter(webhookURL string) *SlackAlerter {
	return &SlackAlerter{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackAlerter) Send(ctx context.Context, alert Alert) error {
	emoji := ":warning:"
	switch alert.Kind {
	case KindReconcileMismatch:
		emoji = ":scales:"
	case string(model.SystemEventEmergencyPause):
		emoji = ":rotating_light:"
	case string(model.SystemEventEmergencyUnpause):
		emoji = ":white_check_mark:"
	}

	text := fmt.Sprintf("%s *[%s]* chain %d: %s\n%s",
		emoji, alert.Kind, alert.ChainID, alert.Title, alert.Message)

	if len(alert.Fields) > 0 {
		text += "\n"
		for k, v := range alert.Fields {
			text += fmt.Sprintf("- *%s*: %s\n", k, v)
		}
	}

	payload := map[string]string{"text": text}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

// WebhookAlerter sends alerts to a generic HTTP webhook.
type WebhookAlerter struct {
	url    string
	client *http.Client
}

func NewWebhookAlerter(url string) *WebhookAlerter {
	return &WebhookAlerter{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookAlerter) Send(ctx context.Context, alert Alert) error {
	payload := map[string]any{
		"kind":     alert.Kind,
		"chain_id": alert.ChainID,
		"title":    alert.Title,
		"message":  alert.Message,
		"fields":   alert.Fields,
		"time":     time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopAlerter discards every alert.
type NoopAlerter struct{}

func (n *NoopAlerter) Send(_ context.Context, _ Alert) error { return nil }
