// Package category models the configurable document category set.
package category

import "strings"

// Uncategorized is the sentinel for documents the classifier could not place.
const Uncategorized = "Uncategorized"

// Set is the known category collection. The zero value accepts only the
// Uncategorized sentinel.
type Set struct {
	names []string
	index map[string]string // lower-cased name -> canonical name
}

// NewSet builds a category set from the configured names. The Uncategorized
// sentinel is always a member, whether listed or not.
func NewSet(names []string) Set {
	s := Set{index: make(map[string]string, len(names)+1)}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, dup := s.index[key]; dup {
			continue
		}
		s.index[key] = n
		s.names = append(s.names, n)
	}
	if _, ok := s.index[strings.ToLower(Uncategorized)]; !ok {
		s.index[strings.ToLower(Uncategorized)] = Uncategorized
		s.names = append(s.names, Uncategorized)
	}
	return s
}

// Names returns the canonical category names in configuration order.
func (s Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Contains reports whether name is a known category (case-insensitive).
func (s Set) Contains(name string) bool {
	_, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Normalize maps a raw category value to its canonical name, falling back to
// the Uncategorized sentinel for anything outside the set.
func (s Set) Normalize(name string) string {
	if canonical, ok := s.index[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canonical
	}
	return Uncategorized
}
