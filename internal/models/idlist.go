package models

import (
	"strconv"
	"strings"
)

// Comma-separated id lists are used for channel membership and thread
// participants, matching how the rest of the schema stores small sets.

// ParseIDList parses a comma-separated list of uints. Invalid or empty
// entries are skipped.
func ParseIDList(s string) []uint {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if v, err := strconv.ParseUint(p, 10, 32); err == nil {
			ids = append(ids, uint(v))
		}
	}
	return ids
}

// JoinIDList renders ids as a comma-separated string.
func JoinIDList(ids []uint) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// AppendID adds id to a comma-separated list if not already present and
// returns the updated list.
func AppendID(s string, id uint) string {
	ids := ParseIDList(s)
	for _, existing := range ids {
		if existing == id {
			return s
		}
	}
	return JoinIDList(append(ids, id))
}

// ContainsID reports whether the comma-separated list contains id.
func ContainsID(s string, id uint) bool {
	for _, existing := range ParseIDList(s) {
		if existing == id {
			return true
		}
	}
	return false
}
