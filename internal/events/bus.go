// Package events re-exports the platform event bus so modules import a
// single events package.
package events

import (
	platformevents "campaign_portal_backend/platform/events"
	"campaign_portal_backend/platform/logger"
)

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
