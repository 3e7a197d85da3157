package hasher

import (
	"fmt"
	"math/bits"
	"testing"
)

func TestString_Deterministic(t *testing.T) {
	h := String()
	keys := []string{"", "a", "mario", "a longer key with spaces", "\x00\x01\x02"}
	for _, k := range keys {
		if h.Hash(k) != h.Hash(k) {
			t.Errorf("hash of %q not stable", k)
		}
	}
	if String().Hash("mario") != h.Hash("mario") {
		t.Error("two String hashers disagree; strategy must be fixed, not seeded")
	}
}

func TestString_Distinct(t *testing.T) {
	h := String()
	seen := make(map[uint64]string)
	for i := 0; i < 10000; i++ {
		k := fmt.Sprintf("key-%d", i)
		v := h.Hash(k)
		if prev, ok := seen[v]; ok {
			t.Fatalf("collision between %q and %q", prev, k)
		}
		seen[v] = k
	}
}

func TestUint64_Avalanche(t *testing.T) {
	// Flipping one input bit should flip close to half the output bits.
	// Accept a generous band; this is a smoke test, not a statistics suite.
	h := Uint64()
	var total, samples int
	for x := uint64(1); x < 1<<20; x = x*3 + 7 {
		base := h.Hash(x)
		for bit := 0; bit < 64; bit += 7 {
			flipped := h.Hash(x ^ (1 << bit))
			total += bits.OnesCount64(base ^ flipped)
			samples++
		}
	}
	avg := float64(total) / float64(samples)
	if avg < 24 || avg > 40 {
		t.Errorf("average flipped output bits %.1f, want near 32", avg)
	}
}

func TestUint32_LowBitsSpread(t *testing.T) {
	// Consecutive keys must not cluster in the low bits used for masking.
	h := Uint32()
	const mask = 63
	var buckets [mask + 1]int
	for i := uint32(0); i < 6400; i++ {
		buckets[h.Hash(i)&mask]++
	}
	for b, n := range buckets {
		if n == 0 {
			t.Errorf("bucket %d never hit across 6400 consecutive keys", b)
		}
	}
}

func TestBytes_MatchesString(t *testing.T) {
	h := String()
	for _, k := range []string{"", "x", "hash me"} {
		if Bytes([]byte(k)) != h.Hash(k) {
			t.Errorf("Bytes and String disagree on %q", k)
		}
	}
}

func TestFunc_Adapter(t *testing.T) {
	var h Hasher[int8] = Func[int8](func(k int8) uint64 { return uint64(k) * 3 })
	if h.Hash(2) != 6 {
		t.Error("Func adapter did not delegate")
	}
}

func BenchmarkString(b *testing.B) {
	h := String()
	key := "benchmark-key-of-typical-length"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Hash(key)
	}
}

func BenchmarkUint64(b *testing.B) {
	h := Uint64()
	for i := 0; i < b.N; i++ {
		_ = h.Hash(uint64(i))
	}
}
