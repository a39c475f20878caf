package dates_test

import (
	"testing"
	"time"

	"azure-watch/updates/internal/dates"
)

func TestNormalizeStructuredTime(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2024, 1, 15, 13, 0, 0, 0, loc)

	got := dates.Normalize(&in, nil, dates.FallbackEpoch)

	want := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
}

func TestNormalizeStructuredWinsOverTexts(t *testing.T) {
	in := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	got := dates.Normalize(&in, []string{"December 5, 2025"}, dates.FallbackEpoch)
	if !got.Equal(in) {
		t.Fatalf("structured candidate should win, got %v", got)
	}
}

func TestNormalizeISOWithTrailingZ(t *testing.T) {
	got := dates.Normalize(nil, []string{"2024-01-15T10:00:00Z"}, dates.FallbackEpoch)
	want := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeFreeText(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"December 5, 2025", time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)},
		{"Dec 5, 2025", time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)},
		{"December 2025", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"Dec 2025", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-12-05", time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := dates.Normalize(nil, []string{tt.in}, dates.FallbackEpoch)
		if !got.Equal(tt.want) {
			t.Errorf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeFirstCandidateWins(t *testing.T) {
	got := dates.Normalize(nil, []string{"", "Jan 2, 2024", "Mar 4, 2024"}, dates.FallbackEpoch)
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected first parsable candidate %v, got %v", want, got)
	}
}

func TestNormalizeUnparseableFallsBackToEpoch(t *testing.T) {
	got := dates.Normalize(nil, []string{"sometime next year"}, dates.FallbackEpoch)
	if !got.Equal(dates.Epoch) {
		t.Fatalf("expected epoch fallback, got %v", got)
	}
}

func TestNormalizeNowPolicy(t *testing.T) {
	before := time.Now().UTC()
	got := dates.Normalize(nil, nil, dates.FallbackNow)
	after := time.Now().UTC()

	if got.Before(before) || got.After(after) {
		t.Fatalf("expected now fallback in [%v, %v], got %v", before, after, got)
	}
}

func TestParseFallback(t *testing.T) {
	if dates.ParseFallback("now") != dates.FallbackNow {
		t.Fatal("expected now policy")
	}
	if dates.ParseFallback("NOW ") != dates.FallbackNow {
		t.Fatal("expected now policy to be case-insensitive")
	}
	if dates.ParseFallback("epoch") != dates.FallbackEpoch {
		t.Fatal("expected epoch policy")
	}
	if dates.ParseFallback("garbage") != dates.FallbackEpoch {
		t.Fatal("expected epoch policy for unknown values")
	}
}
