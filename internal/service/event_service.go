package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/learnmate/learnmate-backend/internal/authz"
	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/rs/zerolog"
)

// EventService publishes class activity and opens live subscriptions.
// Publishing is best-effort: a failed publish is logged, never returned.
type EventService struct {
	access
	bus EventBus
	log zerolog.Logger
}

// NewEventService creates a new EventService. bus may be nil, in which case
// publishing is a no-op.
func NewEventService(bus EventBus, classes ClassStore, enrollments EnrollmentStore, log zerolog.Logger) *EventService {
	return &EventService{
		access: access{classes: classes, enrollments: enrollments},
		bus:    bus,
		log:    log.With().Str("component", "events").Logger(),
	}
}

// Publish sends an event to the class channel.
func (s *EventService) Publish(ctx context.Context, typ model.EventType, classID, resourceID int64, actor uuid.UUID, data interface{}) {
	if s == nil || s.bus == nil {
		return
	}

	evt := model.ClassEvent{
		Type:       typ,
		ClassID:    classID,
		ResourceID: resourceID,
		ActorID:    actor,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		s.log.Error().Err(err).Str("type", string(typ)).Msg("Failed to encode class event")
		return
	}

	if err := s.bus.Publish(ctx, config.CacheKey.ClassEventsChannel(classID), payload); err != nil {
		s.log.Warn().Err(err).
			Str("type", string(typ)).
			Int64("class_id", classID).
			Msg("Failed to publish class event")
	}
}

// Subscribe opens a live feed for a class the caller may read.
func (s *EventService) Subscribe(ctx context.Context, ident *model.Identity, classID int64) (Subscription, error) {
	if _, _, err := s.loadClass(ctx, ident, classID, authz.ResourceClass, authz.ActionRead); err != nil {
		return nil, err
	}
	if s.bus == nil {
		return nil, ErrNotFound
	}
	return s.bus.Subscribe(ctx, config.CacheKey.ClassEventsChannel(classID))
}
