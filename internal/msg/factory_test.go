package msg

import "testing"

func newTestFactory() *MessageFactory {
	return NewMessageFactory(DefaultFactoryConfig(), NewIDProvider(), nil)
}

func TestFactoryTrackIDsMonotonic(t *testing.T) {
	f := newTestFactory()
	t1 := f.NewTrack("file:///a.wav", "")
	t2 := f.NewTrack("file:///b.wav", "")
	if t2.TrackID <= t1.TrackID {
		t.Fatalf("expected monotonic track ids, got %d then %d", t1.TrackID, t2.TrackID)
	}
	f.Free(t1)
	f.Free(t2)
}

func TestFactoryAudioPcmSplitSharesBuffer(t *testing.T) {
	f := newTestFactory()
	samples := make([]int32, 200) // mono, 200 frames
	for i := range samples {
		samples[i] = int32(i)
	}
	a := f.NewAudioPcm(samples, 1, 44100, 0, RampFull)
	head, tail := f.SplitAudioPcm(a, 80)

	if head.Frames() != 80 || tail.Frames() != 120 {
		t.Fatalf("unexpected split sizes: head=%d tail=%d", head.Frames(), tail.Frames())
	}
	if head.Samples()[0] != 0 || tail.Samples()[0] != 80 {
		t.Fatalf("split windows misaligned: head[0]=%d tail[0]=%d", head.Samples()[0], tail.Samples()[0])
	}
	if tail.OffsetJiffies == 0 {
		t.Fatalf("expected tail offset to advance")
	}

	f.Free(head)
	f.Free(tail)
}

// TestAllocatorExhaustionPanics exercises the fatal-resource-exhaustion
// policy: draining a pool below capacity must panic with
// AllocatorNoMemory rather than block forever or return a zero value.
func TestAllocatorExhaustionPanics(t *testing.T) {
	cfg := DefaultFactoryConfig()
	cfg.QuitCount = 1
	f := NewMessageFactory(cfg, NewIDProvider(), nil)

	q := f.NewQuit()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic on pool exhaustion")
		}
		if _, ok := r.(AllocatorNoMemory); !ok {
			t.Fatalf("expected AllocatorNoMemory, got %T: %v", r, r)
		}
		f.Free(q)
	}()
	_ = f.NewQuit()
}

func TestFreeReturnsCellToPool(t *testing.T) {
	cfg := DefaultFactoryConfig()
	cfg.ModeCount = 1
	f := NewMessageFactory(cfg, NewIDProvider(), nil)

	m := f.NewMode("playlist", true, false, true)
	f.Free(m)
	// Should not panic: the cell is back in the pool.
	m2 := f.NewMode("radio", false, true, false)
	f.Free(m2)
}
