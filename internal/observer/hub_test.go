package observer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/trustfield/internal/narration"
	"github.com/talgya/trustfield/internal/phase"
)

func sampleEvent(hash uint64) narration.TransitionEvent {
	return narration.TransitionEvent{
		ContextHash: hash,
		From:        phase.ShyObserver,
		To:          phase.QuietlyBeloved,
		Coherence:   0.7,
		Tension:     0.2,
		At:          time.Unix(0, 0),
	}
}

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)

	h.Publish(sampleEvent(1))

	select {
	case ev := <-ch:
		assert.Equal(t, uint64(1), ev.ContextHash)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe()
	h.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestBacklogBoundedAndOrdered(t *testing.T) {
	h := NewHub()
	for i := uint64(0); i < backlogSize+10; i++ {
		h.Publish(sampleEvent(i))
	}

	backlog := h.Backlog()
	assert.Len(t, backlog, backlogSize)
	assert.Equal(t, uint64(10), backlog[0].ContextHash)
	assert.Equal(t, uint64(backlogSize+9), backlog[len(backlog)-1].ContextHash)
}

func TestLenTracksSubscribers(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.Len())

	id1, _ := h.Subscribe()
	id2, _ := h.Subscribe()
	assert.Equal(t, 2, h.Len())

	h.Unsubscribe(id1)
	assert.Equal(t, 1, h.Len())
	h.Unsubscribe(id2)
	assert.Equal(t, 0, h.Len())
}

func TestPublishSkipsFullSubscriberWithoutBlocking(t *testing.T) {
	h := NewHub()
	_, ch := h.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := uint64(0); i < 100; i++ {
			h.Publish(sampleEvent(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber channel")
	}
	_ = ch
}
