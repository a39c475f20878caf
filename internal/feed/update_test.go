package feed

import (
	"reflect"
	"testing"
)

func TestViable(t *testing.T) {
	cases := []struct {
		name string
		u    Update
		want bool
	}{
		{"complete", Update{Title: "Azure Widget launched", Link: "https://example.com/u"}, true},
		{"exactly minimum title", Update{Title: "abcde", Link: "https://example.com/u"}, true},
		{"short title", Update{Title: "abcd", Link: "https://example.com/u"}, false},
		{"whitespace padding does not count", Update{Title: "  ab  ", Link: "https://example.com/u"}, false},
		{"missing link", Update{Title: "Azure Widget launched"}, false},
		{"empty", Update{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.u.Viable(); got != c.want {
				t.Errorf("Viable() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestUniqueTags(t *testing.T) {
	got := UniqueTags([]string{"Compute", " Networking ", "Compute", "", "  "})
	want := []string{"Compute", "Networking"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueTags() = %v, want %v", got, want)
	}
}

func TestUniqueTagsEmpty(t *testing.T) {
	if got := UniqueTags(nil); got != nil {
		t.Errorf("expected nil for no tags, got %v", got)
	}
	if got := UniqueTags([]string{"", "  "}); got != nil {
		t.Errorf("expected nil for blank-only tags, got %v", got)
	}
}
