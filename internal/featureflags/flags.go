// Package featureflags gates optional surfaces of the app per user.
//
// Flags come from the FEATURE_FLAGS setting, a comma separated list of
// name=value pairs such as "live_feed=on,spreadsheet_export=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	// LiveFeed enables the /ws stream of followed users' new posts.
	LiveFeed = "live_feed"
	// SpreadsheetExport enables ?format=xlsx|csv downloads on /handson_view.
	SpreadsheetExport = "spreadsheet_export"
)

// Defaults is used when FEATURE_FLAGS is unset.
const Defaults = LiveFeed + "=on," + SpreadsheetExport + "=on"

// rule is one parsed flag. percent is only used when rollout is true.
type rule struct {
	on      bool
	rollout bool
	percent int
}

// Set is an immutable collection of flag rules.
type Set struct {
	rules map[string]rule
}

// Parse reads a flag list. Malformed pairs are returned as an error together
// with a Set holding every pair that did parse.
func Parse(raw string) (*Set, error) {
	s := &Set{rules: make(map[string]rule)}
	var bad []string

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = normalize(name)
		if !ok || name == "" {
			bad = append(bad, pair)
			continue
		}
		r, err := parseRule(normalize(value))
		if err != nil {
			bad = append(bad, pair)
			continue
		}
		s.rules[name] = r
	}

	if len(bad) > 0 {
		return s, fmt.Errorf("invalid feature flags: %s", strings.Join(bad, ", "))
	}
	return s, nil
}

func parseRule(value string) (rule, error) {
	switch value {
	case "on", "true", "1":
		return rule{on: true}, nil
	case "off", "false", "0":
		return rule{}, nil
	}
	pct, ok := strings.CutSuffix(value, "%")
	if !ok {
		return rule{}, fmt.Errorf("unknown value %q", value)
	}
	n, err := strconv.Atoi(pct)
	if err != nil || n < 0 || n > 100 {
		return rule{}, fmt.Errorf("bad percentage %q", value)
	}
	return rule{rollout: true, percent: n}, nil
}

// Enabled reports whether name is on for userID. Unknown flags are off.
// A percentage rollout is deterministic per user and never enabled for
// anonymous callers (userID 0) unless it is 100%.
func (s *Set) Enabled(name string, userID uint) bool {
	if s == nil {
		return false
	}
	r, ok := s.rules[normalize(name)]
	switch {
	case !ok:
		return false
	case !r.rollout:
		return r.on
	case r.percent >= 100:
		return true
	case r.percent <= 0 || userID == 0:
		return false
	}
	return bucket(name, userID) < r.percent
}

// Names lists the configured flags in order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.rules))
	for name := range s.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot evaluates every configured flag for userID.
func (s *Set) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(s.rules))
	for name := range s.rules {
		out[name] = s.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
