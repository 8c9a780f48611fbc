package services

import (
	"fanhunt/domain/interfaces"
	"fanhunt/events"

	log "github.com/sirupsen/logrus"
)

// publishEvent queues an event on the unit of work's publisher. Events are
// a side channel, so a publish failure never fails the operation.
func publishEvent(publisher interfaces.EventPublisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to queue event")
	}
}
