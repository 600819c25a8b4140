package posts

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp wraps time.Time so the legacy persisted forms still decode. Old
// documents carry Python str(datetime) output, with or without a zone offset;
// zoneless values are treated as UTC. New values are always written RFC3339
// in UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

var zonelessLayouts = map[string]bool{
	"2006-01-02T15:04:05.999999999": true,
	"2006-01-02 15:04:05.999999999": true,
}

func Now() Timestamp {
	return Timestamp{time.Now().UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		var parsed time.Time
		var err error
		if zonelessLayouts[layout] {
			parsed, err = time.ParseInLocation(layout, raw, time.UTC)
		} else {
			parsed, err = time.Parse(layout, raw)
		}
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}
