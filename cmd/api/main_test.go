package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"campaign_portal_backend/platform/events"
	"campaign_portal_backend/platform/logger"
)

type slowEvent struct {
	events.BaseEvent
}

func (slowEvent) EventName() string { return "test.slow" }

func TestShutdownWaitsForEventHandlers(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Discard())
	var done atomic.Bool
	bus.Subscribe("test.slow", events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
		return nil
	}))
	bus.Publish(context.Background(), slowEvent{BaseEvent: events.NewBaseEvent()})

	shutdown(&http.Server{}, bus, time.Second, logger.Discard())

	if !done.Load() {
		t.Fatal("expected shutdown to wait for the pending handler")
	}
}
