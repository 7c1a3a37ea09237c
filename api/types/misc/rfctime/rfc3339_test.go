package rfctime_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/api/types/misc/rfctime"
)

func TestRFC3339(t *testing.T) {
	t.Run("it round-trips via JSON", func(t *testing.T) {
		orig := rfctime.New(time.Date(2023, 4, 5, 6, 7, 8, 900_000_000, time.UTC))

		b, err := json.Marshal(orig)
		if err != nil {
			t.Fatal(err)
		}

		var parsed rfctime.RFC3339
		if err := json.Unmarshal(b, &parsed); err != nil {
			t.Fatal(err)
		}

		if !orig.Equal(parsed) {
			t.Errorf("unmatch: (marshalled, unmarshalled) = (%s, %s)", orig, parsed)
		}
	})

	t.Run("it parses Z-offset expression", func(t *testing.T) {
		parsed, err := rfctime.ParseRFC3339DateTime("2022-11-15T01:00:00.123Z")
		if err != nil {
			t.Fatal(err)
		}
		expected := time.Date(2022, 11, 15, 1, 0, 0, 123_000_000, time.UTC)
		if !parsed.Time().Equal(expected) {
			t.Errorf("unmatch: (actual, expected) = (%s, %s)", parsed.Time(), expected)
		}
	})

	t.Run("it leaves value as-is for null", func(t *testing.T) {
		var parsed rfctime.RFC3339
		if err := json.Unmarshal([]byte("null"), &parsed); err != nil {
			t.Fatal(err)
		}
		if !parsed.Time().IsZero() {
			t.Errorf("expected zero time, got %s", parsed)
		}
	})
}
