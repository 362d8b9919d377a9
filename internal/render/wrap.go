package render

import "strings"

// Wrap greedily packs words into lines no wider than maxWidth as reported by
// measure. A word wider than maxWidth is placed alone on its own line; words
// are never split.
func Wrap(text string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var (
		lines []string
		cur   = words[0]
	)
	for _, w := range words[1:] {
		candidate := cur + " " + w
		if measure(candidate) <= maxWidth {
			cur = candidate
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	return append(lines, cur)
}
