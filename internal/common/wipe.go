package common

// WipeByteArray zeroes b in place. Password and PIN buffers read from the
// terminal are wiped once the request body has been built.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
