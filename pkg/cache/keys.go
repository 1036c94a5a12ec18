package cache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key joins parts with ":", e.g. Key("leaderboard", "points", 50) is "leaderboard:points:50".
func Key(parts ...interface{}) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}

// Pattern matches every key below the namespace built from parts.
func Pattern(parts ...interface{}) string {
	return Key(parts...) + ":*"
}

// Strings are stored raw; everything else as JSON.
func encode(value interface{}) ([]byte, error) {
	if s, ok := value.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(value)
}

func decode(data []byte, dest interface{}) error {
	if strPtr, ok := dest.(*string); ok {
		*strPtr = string(data)
		return nil
	}
	return json.Unmarshal(data, dest)
}
