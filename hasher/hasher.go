package hasher

// Hasher maps a key to a fixed-width hash value. Implementations must be
// deterministic within a process run; stability across runs or versions is
// not guaranteed. The provided hashers are not seeded and are not hardened
// against adversarial input, matching the trusted single-tenant target.
type Hasher[K any] interface {
	Hash(key K) uint64
}

// Func adapts a plain function to the Hasher interface.
type Func[K any] func(K) uint64

// Hash implements Hasher.
func (f Func[K]) Hash(key K) uint64 { return f(key) }

const (
	fnvOffset64 = 0xcbf29ce484222325
	fnvPrime64  = 0x100000001b3
)

// String returns the default hasher for string keys: FNV-1a over the key
// bytes with a final avalanche mix. The mix matters for open addressing:
// the table indexes with the low bits, and bare FNV-1a distributes change
// poorly into them for short keys.
func String() Hasher[string] {
	return Func[string](func(key string) uint64 {
		h := uint64(fnvOffset64)
		for i := 0; i < len(key); i++ {
			h ^= uint64(key[i])
			h *= fnvPrime64
		}
		return mix64(h)
	})
}

// Bytes hashes a byte slice with the same function as String.
func Bytes(b []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return mix64(h)
}

// Uint32 returns the default hasher for uint32 keys.
func Uint32() Hasher[uint32] {
	return Func[uint32](func(key uint32) uint64 {
		return mix64(uint64(key))
	})
}

// Uint64 returns the default hasher for uint64 keys.
func Uint64() Hasher[uint64] {
	return Func[uint64](mix64)
}

// Int returns the default hasher for int keys.
func Int() Hasher[int] {
	return Func[int](func(key int) uint64 {
		return mix64(uint64(key))
	})
}

// mix64 is the splitmix64 finalizer. Every input bit affects roughly half
// of the output bits, which keeps probe sequences short for clustered keys
// such as consecutive handles.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
