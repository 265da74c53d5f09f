package codec

import (
	"strings"
	"testing"
)

func TestLimitRejectsOversizedPayload(t *testing.T) {
	cod := Limit[string]{Inner: JSON[string]{}, MaxDecode: 16}

	small, err := cod.Encode("ok")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if v, err := cod.Decode(small); err != nil || v != "ok" {
		t.Fatalf("Decode small: %q err=%v", v, err)
	}

	big, err := cod.Encode(strings.Repeat("x", 64))
	if err != nil {
		t.Fatalf("Encode big: %v", err)
	}
	if _, err := cod.Decode(big); err == nil {
		t.Fatalf("oversized payload was decoded")
	}
}

func TestLimitZeroMeansUnlimited(t *testing.T) {
	cod := Limit[string]{Inner: JSON[string]{}}
	b, _ := cod.Encode(strings.Repeat("x", 1<<12))
	if _, err := cod.Decode(b); err != nil {
		t.Fatalf("Decode with no limit: %v", err)
	}
}
