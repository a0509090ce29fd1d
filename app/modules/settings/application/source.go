package settingsservice

import (
	"math"
	"strconv"
	"strings"
)

// Source exposes typed reads of tunable values. Every accessor returns the
// fallback when the key is missing or its value does not parse.
type Source interface {
	GetInt(key string, def int) int
	GetDouble(key string, def float64) float64
	GetString(key string) string
	GetBool(key string, def bool) bool
}

// StaticSource is an in-memory Source, used by tests and one-off CLI runs.
type StaticSource map[string]string

func (s StaticSource) lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

func (s StaticSource) GetInt(key string, def int) int {
	return parseInt(s.lookup, key, def)
}

func (s StaticSource) GetDouble(key string, def float64) float64 {
	return parseDouble(s.lookup, key, def)
}

func (s StaticSource) GetString(key string) string {
	v, _ := s.lookup(key)
	return v
}

func (s StaticSource) GetBool(key string, def bool) bool {
	return parseBool(s.lookup, key, def)
}

type lookupFunc func(key string) (string, bool)

func parseInt(lookup lookupFunc, key string, def int) int {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	raw = strings.TrimSpace(raw)
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	// "10.0" style values written by spreadsheets still count as integers.
	if f, err := strconv.ParseFloat(raw, 64); err == nil && finite(f) && f == float64(int(f)) {
		return int(f)
	}
	return def
}

func parseDouble(lookup lookupFunc, key string, def float64) float64 {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !finite(v) {
		return def
	}
	return v
}

// finite rejects the NaN and infinity spellings ParseFloat accepts.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func parseBool(lookup lookupFunc, key string, def bool) bool {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}
