// Package refs extracts issue references marked for closure from pull
// request descriptions.
package refs

import (
	"regexp"
	"strconv"
)

// closePattern matches GitHub's closing keywords followed by a same-repo
// issue reference, e.g. "Closes #123" or "fixes: #45". The '#' must follow
// the keyword directly, so cross-repo references like "Closes owner/repo#6"
// do not match.
var closePattern = regexp.MustCompile(`(?i)\b(?:close[sd]?|fix(?:e[sd])?|resolve[sd]?):?\s*#(\d+)`)

// Scan returns the issue numbers marked for closure in text, in order of
// first appearance and without duplicates. Malformed references are skipped;
// Scan never fails.
func Scan(text string) []int {
	matches := closePattern.FindAllStringSubmatch(text, -1)

	seen := map[int]bool{}
	numbers := []int{}
	for _, match := range matches {
		n, err := strconv.Atoi(match[1])
		if err != nil || n <= 0 {
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}

	return numbers
}
