package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticketing-api/internal/config"
	"github.com/spec-kit/ticketing-api/internal/events"
	"github.com/spec-kit/ticketing-api/internal/service"
)

func publishThroughNotifications(t *testing.T, cfg config.NotificationConfig, event events.Event) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := service.NewNotificationService(dispatcher, zap.New(core), cfg)
	svc.RegisterHandlers()

	assert.NoError(t, dispatcher.Publish(context.Background(), event))
	return logs
}

func TestNotificationEmailStubFiresWhenConfigured(t *testing.T) {
	logs := publishThroughNotifications(t,
		config.NotificationConfig{EmailFrom: "noreply@example.com"},
		events.Event{Type: events.EventCommentAdded, TicketID: "ticket-1"})

	assert.Equal(t, 1, logs.FilterMessage("CommentAdded").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Equal(t, 0, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationWebhookStubFiresWhenConfigured(t *testing.T) {
	logs := publishThroughNotifications(t,
		config.NotificationConfig{WebhookURL: "https://hooks.example.com/tickets"},
		events.Event{Type: events.EventTicketStatusChanged, TicketID: "ticket-1"})

	assert.Equal(t, 1, logs.FilterMessage("TicketStatusChanged").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationStubsSkippedWithoutEndpoints(t *testing.T) {
	logs := publishThroughNotifications(t,
		config.NotificationConfig{},
		events.Event{Type: events.EventTicketCreated, TicketID: "ticket-1"})

	assert.Equal(t, 1, logs.FilterMessage("TicketCreated").Len())
	assert.Equal(t, 0, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Equal(t, 0, logs.FilterMessage("sendWebhookNotificationStub").Len())
}
