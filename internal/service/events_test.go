package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/templui/gallery/internal/model"
)

func TestSessionBroker(t *testing.T) {
	broker := NewSessionBroker()

	var a, b []model.SessionEventType
	unsubA := broker.Subscribe(func(e model.SessionEvent) { a = append(a, e.Type) })
	unsubB := broker.Subscribe(func(e model.SessionEvent) { b = append(b, e.Type) })
	assert.Equal(t, 2, broker.Subscribers())

	broker.Publish(model.SessionEvent{Type: model.SessionSignedIn})

	unsubA()
	unsubA()
	assert.Equal(t, 1, broker.Subscribers())

	broker.Publish(model.SessionEvent{Type: model.SessionSignedOut})

	assert.Equal(t, []model.SessionEventType{model.SessionSignedIn}, a)
	assert.Equal(t, []model.SessionEventType{model.SessionSignedIn, model.SessionSignedOut}, b)

	unsubB()
	assert.Zero(t, broker.Subscribers())
}

func TestSessionBrokerUnsubscribeDuringPublish(t *testing.T) {
	broker := NewSessionBroker()

	calls := 0
	var unsubscribe func()
	unsubscribe = broker.Subscribe(func(model.SessionEvent) {
		calls++
		unsubscribe()
	})

	broker.Publish(model.SessionEvent{Type: model.SessionSignedOut})
	broker.Publish(model.SessionEvent{Type: model.SessionSignedOut})

	assert.Equal(t, 1, calls)
}
