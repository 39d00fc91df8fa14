// Package datekey maps date strings to integers that sort the way the dates do.
package datekey

// Parse concatenates the ASCII digits of s, left to right, into one integer.
// Every other character is ignored, so "2024-01-15 10:30:00" becomes
// 20240115103000. Keys only compare meaningfully between strings that share
// the same layout and digit width.
func Parse(s string) int64 {
	var key int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			key = key*10 + int64(c-'0')
		}
	}
	return key
}
