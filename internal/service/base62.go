package service

import "fmt"

// Base62 character set for short code generation. The concatenation order
// (digits, uppercase, lowercase) is load-bearing: codes must stay
// byte-compatible across deployments.
const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// EncodeBase62 encodes a number to a Base62 string
func EncodeBase62(num uint64) string {
	if num == 0 {
		return string(base62Chars[0]) // "0"
	}
	encoded := ""
	for num > 0 {
		remainder := num % 62
		encoded = string(base62Chars[remainder]) + encoded
		num = num / 62
	}
	return encoded
}

// DecodeBase62 is the inverse of EncodeBase62.
func DecodeBase62(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("decode base62: empty string")
	}
	var num uint64
	for _, c := range []byte(s) {
		idx := base62Index(c)
		if idx < 0 {
			return 0, fmt.Errorf("decode base62: invalid character %q", c)
		}
		num = num*62 + uint64(idx)
	}
	return num, nil
}

func base62Index(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 36
	}
	return -1
}
