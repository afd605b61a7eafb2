package events

import (
	"fmt"
	"testing"
	"time"
)

func preview(id string) Preview {
	return Preview{JobID: id, Provider: "acme", TicketID: "T-1", Status: "printed", At: time.Now()}
}

func TestHubDeliversToSubscribers(t *testing.T) {
	h := NewHub(8)
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(preview("job-1"))

	select {
	case p := <-ch:
		if p.JobID != "job-1" {
			t.Errorf("JobID = %q", p.JobID)
		}
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}
}

func TestHubRecentKeepsRingOrder(t *testing.T) {
	h := NewHub(3)
	for i := 1; i <= 5; i++ {
		h.Publish(preview(fmt.Sprintf("job-%d", i)))
	}

	got := h.Recent()
	if len(got) != 3 {
		t.Fatalf("Recent returned %d previews", len(got))
	}
	for i, want := range []string{"job-3", "job-4", "job-5"} {
		if got[i].JobID != want {
			t.Errorf("Recent[%d] = %q, want %q", i, got[i].JobID, want)
		}
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	h := NewHub(8)
	ch, cancel := h.Subscribe()
	cancel()

	// Publishing after cancel must not panic on the closed channel.
	h.Publish(preview("job-1"))

	if _, ok := <-ch; ok {
		t.Error("cancelled subscription received an event")
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(4)
	_, cancel := h.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(preview(fmt.Sprintf("job-%d", i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
