package timex

import (
	"encoding/json"
	"fmt"
	"time"
)

// naiveISO is ISO-8601 without a zone offset, as produced by Python's
// datetime.isoformat() for naive UTC values.
const naiveISO = "2006-01-02T15:04:05.999999999"

// Timestamp is an absolute instant encoded as an ISO-8601 string.
// It marshals as RFC 3339 in UTC and unmarshals from RFC 3339 or from
// naive ISO-8601, which is read as UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.ParseInLocation(naiveISO, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid ISO-8601 timestamp %q", s)
	}
	t.Time = parsed
	return nil
}
