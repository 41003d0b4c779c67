package event_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ArnaudClarat/FactRush/internal/event"
)

type namedEvent string

func (e namedEvent) Name() string { return string(e) }

func TestBusDeliversToSubscribers(t *testing.T) {
	b := event.NewBus()

	var (
		mu       sync.Mutex
		received = make(map[string][]event.Event)
	)
	subscribe := func(sub, name string) {
		b.Subscribe(name, func(ctx context.Context, e event.Event) error {
			mu.Lock()
			received[sub] = append(received[sub], e)
			mu.Unlock()
			return nil
		})
	}

	subscribe("s1", "e1")
	subscribe("s2", "e1")
	subscribe("s2", "e2")

	b.Publish(context.Background(), namedEvent("e1"))
	b.Publish(context.Background(), namedEvent("e2"))
	b.Publish(context.Background(), namedEvent("e3"))
	b.Stop()

	assert.ElementsMatch(t, []event.Event{namedEvent("e1")}, received["s1"])
	assert.ElementsMatch(t, []event.Event{namedEvent("e1"), namedEvent("e2")}, received["s2"])
}

func TestBusSurvivesFailingAndPanickingHandlers(t *testing.T) {
	b := event.NewBus()

	var (
		mu    sync.Mutex
		calls int
	)
	b.Subscribe("e", func(ctx context.Context, e event.Event) error {
		return fmt.Errorf("handler failed")
	})
	b.Subscribe("e", func(ctx context.Context, e event.Event) error {
		panic("handler panicked")
	})
	b.Subscribe("e", func(ctx context.Context, e event.Event) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	b.Publish(context.Background(), namedEvent("e"))
	b.Publish(context.Background(), namedEvent("e"))
	b.Stop()

	assert.Equal(t, 2, calls, "healthy handlers keep receiving events")
}
