package qobuz

import "testing"

func TestSignIsDeterministicAndOrderIndependent(t *testing.T) {
	params := map[string]string{
		"track_id":  "123",
		"format_id": "5",
		"sample":    "",
	}
	a := sign("trackGetFileUrl", params, 1000, "secret")
	b := sign("trackGetFileUrl", params, 1000, "secret")
	if a != b {
		t.Fatalf("expected deterministic signature")
	}
}

func TestSignIncludesEmptyValuedParams(t *testing.T) {
	withEmpty := map[string]string{"a": "1", "b": ""}
	withoutEmpty := map[string]string{"a": "1"}

	sigWith := sign("m", withEmpty, 1, "secret")
	sigWithout := sign("m", withoutEmpty, 1, "secret")
	if sigWith == sigWithout {
		t.Fatalf("expected signature to differ when an empty-valued param is present")
	}
}

func TestSignChangesWithTimestamp(t *testing.T) {
	params := map[string]string{"a": "1"}
	s1 := sign("m", params, 100, "secret")
	s2 := sign("m", params, 200, "secret")
	if s1 == s2 {
		t.Fatalf("expected signature to depend on timestamp")
	}
}
