package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/TicketsBot/revenuecat-sync/pkg/model"
	"github.com/TicketsBot/revenuecat-sync/pkg/revenuecat"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authorization != "" {
			header := r.Header.Get("Authorization")
			if subtle.ConstantTimeCompare([]byte(header), []byte(s.authorization)) != 1 {
				eventsTotal.WithLabelValues("unknown", "unauthorized").Inc()
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With(zap.String("delivery_id", uuid.NewString()))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			eventsTotal.WithLabelValues("unknown", "too_large").Inc()
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}

		eventsTotal.WithLabelValues("unknown", "invalid").Inc()
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var raw revenuecat.Object
	var payload model.WebhookPayload
	err = json.Unmarshal(body, &raw)
	if err == nil {
		err = raw.Decode(&payload)
	}

	if err != nil || raw == nil {
		logger.Warn("Received malformed webhook", zap.Error(err))
		eventsTotal.WithLabelValues("unknown", "invalid").Inc()
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	event := payload.Event
	if event.Type == "" {
		eventsTotal.WithLabelValues("unknown", "invalid").Inc()
		http.Error(w, "missing event type", http.StatusBadRequest)
		return
	}

	// The raw event keeps every field, including ones the typed view drops.
	rawEvent, _ := raw["event"].(map[string]any)

	eventType := string(event.Type)
	logger = logger.With(
		zap.String("event_id", event.Id),
		zap.String("event_type", eventType),
		zap.String("subscription", revenuecat.SubscriptionName(rawEvent)),
	)

	if event.Type == model.EventTypeTest {
		logger.Info("Received test webhook")
		eventsTotal.WithLabelValues(eventType, "ignored").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	ids := event.AffectedAppUserIds()
	if len(ids) == 0 {
		logger.Warn("Webhook event names no customer")
		eventsTotal.WithLabelValues(eventType, "ignored").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.syncTimeout)
	defer cancel()

	for _, id := range ids {
		if err := s.syncer.SyncCustomer(ctx, id); err != nil {
			logger.Error("Failed to sync customer from webhook", zap.String("app_user_id", id), zap.Error(err))
			eventsTotal.WithLabelValues(eventType, "failed").Inc()
			http.Error(w, "sync failed", http.StatusInternalServerError)
			return
		}
	}

	logger.Info("Processed webhook", zap.Strings("app_user_ids", ids))
	eventsTotal.WithLabelValues(eventType, "processed").Inc()
	w.WriteHeader(http.StatusOK)
}
