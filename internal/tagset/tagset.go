// Package tagset filters exported tag sets against a whitelist of fields
// known to be safe across hardware players.
package tagset

import (
	"sort"
	"strings"
)

// Whitelist is a case-insensitive set of permitted tag names.
type Whitelist map[string]struct{}

// NewWhitelist builds a whitelist from key names, normalizing to upper case.
func NewWhitelist(keys []string) Whitelist {
	w := make(Whitelist, len(keys))
	for _, k := range keys {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k != "" {
			w[k] = struct{}{}
		}
	}
	return w
}

// Allows reports whether key is whitelisted, ignoring case.
func (w Whitelist) Allows(key string) bool {
	_, ok := w[strings.ToUpper(strings.TrimSpace(key))]
	return ok
}

// Entry is one tag as it will be written back: upper-cased key, verbatim value.
type Entry struct {
	Key   string
	Value string
}

// Filter keeps whitelisted tags only, upper-casing keys on the way out.
// Duplicate source keys have already collapsed to last-seen value in the
// exported map; filtering is deterministic (entries sorted by key) so that
// sanitizing twice with the same whitelist yields the same result.
func Filter(tags map[string]string, w Whitelist) []Entry {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Keys that normalize to the same name collapse here too; sorted
	// iteration keeps the winner stable across runs.
	merged := make(map[string]string)
	for _, k := range keys {
		if w.Allows(k) {
			merged[strings.ToUpper(strings.TrimSpace(k))] = tags[k]
		}
	}

	out := make([]Entry, 0, len(merged))
	for k, v := range merged {
		out = append(out, Entry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
