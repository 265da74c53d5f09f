package wire

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"commodity":"Tomatoes"}`)

	env, err := Decode(Encode(now, payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(env.Payload, payload) {
		t.Fatalf("payload mangled: %q", env.Payload)
	}
	if env.CreatedAt.UnixNano() != now.UnixNano() {
		t.Fatalf("createdAt mangled: %v != %v", env.CreatedAt, now)
	}
}

func TestRoundTripEmptyPayload(t *testing.T) {
	env, err := Decode(Encode(time.Now(), nil))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(env.Payload) != 0 {
		t.Fatalf("expected empty payload, got %q", env.Payload)
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	good := Encode(time.Now(), []byte("payload"))

	flip := func(i int) []byte {
		b := append([]byte(nil), good...)
		b[i] ^= 0xff
		return b
	}

	cases := []struct {
		name string
		b    []byte
	}{
		{"empty", nil},
		{"short", good[:5]},
		{"header only, truncated payload", good[:len(good)-3]},
		{"bad magic", flip(0)},
		{"bad version", flip(4)},
		{"bad kind", flip(5)},
		{"trailing garbage", append(append([]byte(nil), good...), 'x')},
		{"plen mismatch", flip(17)}, // low byte of the length field
	}
	for _, tc := range cases {
		if _, err := Decode(tc.b); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: want ErrCorrupt, got %v", tc.name, err)
		}
	}
}
