package services

import "log"

// EventPublisher is the slice of the message-queue client the services use.
// A nil publisher disables eventing, as in tests.
type EventPublisher interface {
	Publish(routingKey string, event map[string]interface{}) error
}

// publishEvent fires a domain event best-effort: a broker failure is logged
// and never fails the business operation that triggered it.
func publishEvent(p EventPublisher, routingKey string, event map[string]interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, event); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
