package broadcaster

import (
	"strings"
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	b.Publish("scan", map[string]string{"status": "PASS"})

	for i, ch := range []<-chan string{ch1, ch2} {
		select {
		case msg := <-ch:
			if !strings.HasPrefix(msg, "event: scan\n") {
				t.Fatalf("subscriber %d got malformed frame: %q", i+1, msg)
			}
			if !strings.Contains(msg, `"status":"PASS"`) {
				t.Fatalf("subscriber %d missing payload: %q", i+1, msg)
			}
			if !strings.HasSuffix(msg, "\n\n") {
				t.Fatalf("subscriber %d frame not terminated: %q", i+1, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i+1)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	id, ch := b.Subscribe()

	b.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	if b.Count() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", b.Count())
	}

	// Safe to call twice
	b.Unsubscribe(id)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := New()
	b.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish("scan", map[string]int{"seq": i})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestDroppedSubscriberDoesNotAffectOthers(t *testing.T) {
	b := New()
	b.Subscribe() // full buffer victim, never drained
	_, healthy := b.Subscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		b.Publish("scan", map[string]int{"seq": i})
	}

	received := 0
	for {
		select {
		case <-healthy:
			received++
			if received == subscriberBuffer {
				// Buffer-sized backlog delivered intact to the healthy client.
				return
			}
		case <-time.After(time.Second):
			t.Fatalf("healthy subscriber received %d events, expected %d", received, subscriberBuffer)
		}
	}
}
