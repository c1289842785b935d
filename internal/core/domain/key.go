package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultKeyTick is the clock granularity of derived keys. Two derivations
// for the same owner within one tick yield the same key.
const DefaultKeyTick = time.Hour

// KeyDeriver produces order identifiers from the owner identity and the
// current clock reading. Derivation is pure per (owner, tick): callers must
// tolerate the tick granularity, since a creation attempt at an occupied
// key fails with ErrOrderAlreadyExists.
type KeyDeriver struct {
	now  func() time.Time
	tick time.Duration

	mtx sync.Mutex
	seq map[string]uint64
}

// NewKeyDeriver returns a deriver reading the given clock. A nil clock
// defaults to time.Now, a zero tick to DefaultKeyTick.
func NewKeyDeriver(now func() time.Time, tick time.Duration) *KeyDeriver {
	if now == nil {
		now = time.Now
	}
	if tick <= 0 {
		tick = DefaultKeyTick
	}
	return &KeyDeriver{now: now, tick: tick, seq: make(map[string]uint64)}
}

// DeriveKey returns the identifier for the owner at the current clock tick.
func (k *KeyDeriver) DeriveKey(owner string) string {
	return deriveKey(owner, uint64(k.now().Unix())/uint64(k.tick.Seconds()), 0)
}

// NextKey returns an identifier guaranteed fresh for this deriver by mixing
// a per-owner monotonic sequence into the derivation, removing the
// same-tick collision window of DeriveKey.
func (k *KeyDeriver) NextKey(owner string) string {
	k.mtx.Lock()
	k.seq[owner]++
	seq := k.seq[owner]
	k.mtx.Unlock()

	return deriveKey(owner, uint64(k.now().Unix())/uint64(k.tick.Seconds()), seq)
}

func deriveKey(owner string, tick, seq uint64) string {
	h := sha256.New()
	h.Write([]byte(owner))

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], tick)
	binary.BigEndian.PutUint64(buf[8:], seq)
	h.Write(buf[:])

	return hex.EncodeToString(h.Sum(nil))
}
