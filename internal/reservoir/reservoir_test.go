package reservoir

import (
	"context"
	"testing"
	"time"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
)

func TestEncodedReservoirBackpressure(t *testing.T) {
	r := NewEncodedReservoir(100, 4)
	ctx := context.Background()

	big := &msg.AudioEncoded{Bytes: make([]byte, 100)}
	if err := r.Push(ctx, big); err != nil {
		t.Fatalf("first push: %v", err)
	}

	pushed := make(chan error, 1)
	go func() {
		pushed <- r.Push(ctx, &msg.AudioEncoded{Bytes: make([]byte, 40)})
	}()

	select {
	case <-pushed:
		t.Fatalf("second push should have blocked over capacity")
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := r.Pull(ctx); err != nil {
		t.Fatalf("pull: %v", err)
	}

	select {
	case err := <-pushed:
		if err != nil {
			t.Fatalf("push after drain: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("push never unblocked after drain")
	}
}

func TestEncodedReservoirControlMessagesNeverBlock(t *testing.T) {
	r := NewEncodedReservoir(10, 1)
	ctx := context.Background()
	_ = r.Push(ctx, &msg.AudioEncoded{Bytes: make([]byte, 20)})

	done := make(chan error, 1)
	go func() { done <- r.Push(ctx, &msg.Flush{FlushID: 1}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("flush push: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("control message blocked behind backpressure")
	}
}

func TestDecodedReservoirGorging(t *testing.T) {
	r := NewDecodedReservoir(1_000_000, 500, 50)
	ctx := context.Background()

	_ = r.Push(ctx, &msg.DecodedStream{StreamID: 1})
	_ = r.Push(ctx, &msg.Silence{Jiffies: 100})

	// The DecodedStream itself is a control message at the head and
	// passes straight through; the audio behind it is withheld.
	if m, err := r.Pull(ctx); err != nil || m.Kind() != msg.KindDecodedStream {
		t.Fatalf("expected DecodedStream first, got %v (err=%v)", m, err)
	}

	pulled := make(chan msg.Msg, 1)
	go func() {
		m, _ := r.Pull(ctx)
		pulled <- m
	}()

	select {
	case <-pulled:
		t.Fatalf("should not release Silence yet, gorge threshold not met")
	case <-time.After(50 * time.Millisecond):
	}

	_ = r.Push(ctx, &msg.Silence{Jiffies: 450})

	select {
	case m := <-pulled:
		if m.Kind() != msg.KindSilence {
			t.Fatalf("expected the withheld Silence once gorged, got %v", m.Kind())
		}
	case <-time.After(time.Second):
		t.Fatalf("gorge release never happened")
	}
}

func TestDecodedReservoirStarvation(t *testing.T) {
	r := NewDecodedReservoir(1_000_000, 0, 100)
	if !r.Starving() {
		t.Fatalf("empty reservoir should be starving")
	}
	_ = r.Push(context.Background(), &msg.Silence{Jiffies: 200})
	if r.Starving() {
		t.Fatalf("reservoir above threshold should not be starving")
	}
}
