package pagination

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 45, 123456789, time.UTC)
	cursor := EncodeCursor(ts, 42)

	gotTS, gotID, err := DecodeCursor(cursor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotTS.Equal(ts) {
		t.Errorf("timestamp mismatch: got %v, want %v", gotTS, ts)
	}
	if gotID != 42 {
		t.Errorf("id mismatch: got %d, want 42", gotID)
	}
}

func TestCursorNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, loc)

	gotTS, _, err := DecodeCursor(EncodeCursor(ts, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTS.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", gotTS.Location())
	}
	if !gotTS.Equal(ts) {
		t.Errorf("instant changed: got %v, want %v", gotTS, ts)
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	cases := []struct {
		name   string
		cursor string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"missing separator", base64.URLEncoding.EncodeToString([]byte("justonepart"))},
		{"bad timestamp", base64.URLEncoding.EncodeToString([]byte("notatime,5"))},
		{"bad id", base64.URLEncoding.EncodeToString([]byte("2024-01-15T10:00:00Z,abc"))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, _, err := DecodeCursor(c.cursor); err == nil {
				t.Fatalf("expected error for cursor %q", c.cursor)
			}
		})
	}
}
