// Package base62 converts sequence numbers into short codes.
package base62

// Alphabet is ordered digits, uppercase, lowercase. Short codes are compared
// as opaque strings everywhere else, so no decode is provided.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Encode converts n to its positional base-62 representation.
// Encode(0) returns "0".
func Encode(n uint64) string {
	if n == 0 {
		return string(Alphabet[0])
	}

	// uint64 needs at most 11 base-62 digits.
	var buf [11]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = Alphabet[n%62]
		n /= 62
	}
	return string(buf[i:])
}
