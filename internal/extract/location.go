package extract

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Rooms is a dictionary of known location tokens, held longest-first so a
// short room code that is a prefix of a longer one never shadows the more
// specific match. Built once at startup and read-only afterwards.
type Rooms struct {
	tokens []string
}

// NewRooms builds a room dictionary from raw tokens.
func NewRooms(tokens []string) *Rooms {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return &Rooms{tokens: sorted}
}

// LoadRooms reads a room list file: one room per line, the token being the
// first whitespace-separated field. Tokens without a dash or over 14
// characters are noise in the source data and are skipped.
func LoadRooms(path string) (*Rooms, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening room list: %w", err)
	}
	defer f.Close()

	var tokens []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		token := fields[0]
		if strings.Contains(token, "-") && len(token) < 15 {
			tokens = append(tokens, token)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading room list: %w", err)
	}
	return NewRooms(tokens), nil
}

// Resolve returns the first-mentioned known room in body, or "" when none
// match. Longer tokens are tried first, and a token already covered by a
// recorded match is skipped, so "32-123" beats its substring "32-1".
func (r *Rooms) Resolve(body string) string {
	type match struct {
		token  string
		offset int
	}
	var matches []match

	for _, token := range r.tokens {
		offset := strings.Index(body, token)
		if offset < 0 {
			continue
		}
		subsumed := false
		for _, m := range matches {
			if strings.Contains(m.token, token) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			matches = append(matches, match{token: token, offset: offset})
		}
	}

	if len(matches) == 0 {
		return ""
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.offset < best.offset {
			best = m
		}
	}
	return best.token
}
