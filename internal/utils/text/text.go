// Package text provides rune-aware helpers for preview text shown in feed rows.
package text

// Ellipsis is appended to truncated previews.
const Ellipsis = "..."

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Multi-byte characters such as Korean, Japanese or emoji count as one.
func CountRunes(text string) int {
	return len([]rune(text))
}

// Truncate returns the first max runes of s followed by Ellipsis when s is
// longer than max runes, and s unchanged otherwise.
//
// Examples:
//
//	Truncate("hello", 20)                  // "hello"
//	Truncate("제주도 3박 4일 여행 코스 정리했어요", 10) // "제주도 3박 4일 ..."
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + Ellipsis
}
