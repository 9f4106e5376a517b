package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/document-tracking/internal/events"
)

// EventRecorder counts delivered domain events.
type EventRecorder interface {
	RecordEvent(eventType string)
}

// ActivityService writes an activity log line for every document event.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	recorder   EventRecorder
}

// NewActivityService creates the service. recorder may be nil.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, recorder EventRecorder) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		recorder:   recorder,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventDocumentCreated, a.handle("DocumentCreated"))
	a.dispatcher.Subscribe(events.EventDocumentMoved, a.handle("DocumentMoved"))
	a.dispatcher.Subscribe(events.EventDocumentAssigned, a.handle("DocumentAssigned"))
	a.dispatcher.Subscribe(events.EventDocumentStatusChanged, a.handle("DocumentStatusChanged"))
	a.dispatcher.Subscribe(events.EventDocumentDeleted, a.handle("DocumentDeleted"))
}

func (a *ActivityService) handle(name string) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		a.logger.Info(name,
			zap.String("event_id", event.ID),
			zap.Int64("document_id", event.DocumentID),
			zap.Int64("user_id", event.ActorUserID),
			zap.Any("payload", event.Payload))
		if a.recorder != nil {
			a.recorder.RecordEvent(string(event.Type))
		}
		return nil
	}
}
