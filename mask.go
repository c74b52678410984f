package ecs

import "math/bits"

// bitmask256 is a set of up to 256 component ids, one bit per id.
type bitmask256 [4]uint64

func (m *bitmask256) set(bit uint8) {
	m[bit>>6] |= uint64(1) << (bit & 63)
}

func (m *bitmask256) unset(bit uint8) {
	m[bit>>6] &^= uint64(1) << (bit & 63)
}

func (m bitmask256) containsBit(bit uint8) bool {
	return m[bit>>6]&(uint64(1)<<(bit&63)) != 0
}

// contains reports whether every bit set in sub is also set in m.
func (m bitmask256) contains(sub bitmask256) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

// intersects reports whether m and other share at least one bit.
func (m bitmask256) intersects(other bitmask256) bool {
	return m[0]&other[0] != 0 ||
		m[1]&other[1] != 0 ||
		m[2]&other[2] != 0 ||
		m[3]&other[3] != 0
}

func (m bitmask256) count() int {
	return bits.OnesCount64(m[0]) +
		bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) +
		bits.OnesCount64(m[3])
}

// eachBit calls visit for every set bit, in ascending order.
func (m bitmask256) eachBit(visit func(bit uint8)) {
	for word := 0; word < 4; word++ {
		w := m[word]
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			visit(uint8(word<<6 | bit))
			w &= w - 1
		}
	}
}
