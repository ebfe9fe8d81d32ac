// Package checksum produces the 128-bit state digests the sessions compare
// for desync detection.
package checksum

import "golang.org/x/crypto/blake2b"

// Size is the digest width in bytes.
const Size = 16

// Sum128 digests an encoded state snapshot with BLAKE2b-128. The sessions
// never interpret the value; equality is all that matters, so any stable
// 128-bit digest would do, but every host of one session must use the same
// function.
func Sum128(data []byte) [Size]byte {
	h, err := blake2b.New(Size, nil)
	if err != nil {
		// blake2b.New only fails for invalid digest sizes.
		panic(err)
	}
	h.Write(data)
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
