package slice

func ReverseInPlace[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func Contains[T comparable](s []T, value T) bool {
	for _, a := range s {
		if a == value {
			return true
		}
	}
	return false
}

// Dedup removes consecutive duplicates in place and returns the shortened slice
func Dedup[T comparable](s []T) []T {
	if len(s) < 2 {
		return s
	}
	j := 1
	for i := 1; i < len(s); i++ {
		if s[i] != s[j-1] {
			s[j] = s[i]
			j++
		}
	}
	return s[:j]
}
