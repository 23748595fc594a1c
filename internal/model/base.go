package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Millis is an epoch-millisecond timestamp. The backend is inconsistent
// about timestamp encoding (some endpoints send epoch millis, others
// ISO-8601 strings), so JSON ingestion normalizes both to epoch millis.
type Millis int64

// Now returns the current time as epoch millis.
func Now() Millis {
	return Millis(time.Now().UnixMilli())
}

// Time converts the timestamp back to a time.Time.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

func (m Millis) IsZero() bool {
	return m == 0
}

func (m Millis) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(m), 10)), nil
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*m = 0
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", s, err)
		}
		// Numeric strings occur too ("1712345678901").
		if n, err := strconv.ParseInt(unquoted, 10, 64); err == nil {
			*m = Millis(n)
			return nil
		}
		t, err := parseISO(unquoted)
		if err != nil {
			return err
		}
		*m = Millis(t.UnixMilli())
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", s, err)
	}
	*m = Millis(n)
	return nil
}

func parseISO(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
