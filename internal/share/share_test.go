package share

import (
	"errors"
	"strings"
	"testing"

	"clarity-score-service/internal/domain"
)

const resultsURL = "https://example.com/results?&ScoreSEO=2&Name=Ada"

func TestLinkPerPlatform(t *testing.T) {
	b := NewBuilder("")
	cases := map[string]string{
		LinkedIn: "https://www.linkedin.com/sharing/share-offsite/?url=https%3A%2F%2Fexample.com%2Fresults%3F%26ScoreSEO%3D2%26Name%3DAda",
		Twitter:  "https://twitter.com/intent/tweet?url=https%3A%2F%2Fexample.com%2Fresults%3F%26ScoreSEO%3D2%26Name%3DAda",
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fexample.com%2Fresults%3F%26ScoreSEO%3D2%26Name%3DAda",
		Email:    "mailto:?body=View%20your%20ClarityScore%20here!%20https%3A%2F%2Fexample.com%2Fresults%3F%26ScoreSEO%3D2%26Name%3DAda",
		Copy:     resultsURL,
	}
	for platform, want := range cases {
		link, err := b.Link(platform, resultsURL)
		if err != nil {
			t.Fatalf("%s: %v", platform, err)
		}
		if link.Href != want {
			t.Fatalf("%s:\n got: %s\nwant: %s", platform, link.Href, want)
		}
	}
}

func TestCopyActionAndUnknownPlatform(t *testing.T) {
	b := NewBuilder("Results: ")
	link, _ := b.Link(Copy, resultsURL)
	if link.Action != "copy" {
		t.Fatalf("expected copy action, got %s", link.Action)
	}
	if _, err := b.Link("myspace", resultsURL); !errors.Is(err, domain.ErrUnknownPlatform) {
		t.Fatalf("expected ErrUnknownPlatform, got %v", err)
	}

	links := b.Links(resultsURL)
	if len(links) != len(Platforms) {
		t.Fatalf("expected %d links, got %d", len(Platforms), len(links))
	}
	if !strings.HasPrefix(links[3].Href, "mailto:?body=Results%3A%20") {
		t.Fatalf("custom email message not used: %s", links[3].Href)
	}
}
