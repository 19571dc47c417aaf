package metrics

import (
	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

// CountingPublisher counts every lifecycle transition before handing the
// event to Next.
type CountingPublisher struct {
	Next ports.EventPublisher
}

func (p CountingPublisher) Publish(event domain.IncidentEvent) {
	IncidentTransitionsTotal.WithLabelValues(string(event.Status)).Inc()
	p.Next.Publish(event)
}
