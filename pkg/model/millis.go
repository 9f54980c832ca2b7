package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Millis is a Unix timestamp in milliseconds, as used throughout the RevenueCat API.
// JSON null decodes to the zero time.
type Millis struct {
	time.Time
}

func MillisFromTime(t time.Time) Millis {
	return Millis{Time: t}
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		m.Time = time.Time{}
		return nil
	}

	var ms json.Number
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}

	value, err := ms.Int64()
	if err != nil {
		f, ferr := ms.Float64()
		if ferr != nil {
			return err
		}

		value = int64(f)
	}

	m.Time = time.UnixMilli(value).UTC()
	return nil
}

func (m Millis) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}

	return []byte(strconv.FormatInt(m.UnixMilli(), 10)), nil
}

// Ptr returns nil for the zero time.
func (m Millis) Ptr() *time.Time {
	if m.IsZero() {
		return nil
	}

	t := m.Time
	return &t
}
