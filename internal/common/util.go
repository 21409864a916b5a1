package common

// WipeByteArray overwrites the contents of b with zeros so that passwords
// read from the terminal do not linger in memory. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
