package scoring

import (
	"math/rand"
	"testing"

	"clarity-score-service/internal/domain"
	"github.com/google/go-cmp/cmp"
)

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

type countingRand struct {
	calls int
}

func (c *countingRand) Intn(n int) int {
	c.calls++
	return n - 1
}

func defaultCategories() []domain.Category {
	return domain.DefaultQuestionnaire().Categories
}

func exampleSnapshot() domain.Snapshot {
	return domain.Snapshot{Scores: []domain.CategoryScore{
		{Category: "Strategy", Score: 2},
		{Category: "Operations", Score: 1},
		{Category: "Creative", Score: 0},
		{Category: "Content", Score: 2},
		{Category: "Advertising", Score: 0},
		{Category: "EmailSMS", Score: 0},
		{Category: "Social", Score: 1},
		{Category: "SEO", Score: 2},
	}}
}

func TestClamp(t *testing.T) {
	cases := map[int]int{-100: 0, -1: 0, 0: 0, 1: 1, 2: 2, 3: 2, 1 << 40: 2}
	for in, want := range cases {
		if got := Clamp(in); got != want {
			t.Fatalf("Clamp(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestParseSnapshotClampsEveryScore(t *testing.T) {
	d := NewDecoder([]domain.Category{"Strategy", "SEO", "Social", "Content"}, WithRand(fixedRand(1)))
	snap := d.ParseSnapshot("?&ScoreStrategy=-4&ScoreSEO=17&ScoreSocial=99999999999999999999999&ScoreContent=-99999999999999999999")

	want := []domain.CategoryScore{
		{Category: "Strategy", Score: 0},
		{Category: "SEO", Score: 2},
		{Category: "Social", Score: 2},
		{Category: "Content", Score: 0},
	}
	if diff := cmp.Diff(want, snap.Scores); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSnapshotIntegerPrefixes(t *testing.T) {
	cases := map[string]int{
		"1":    1,
		" 1":   1,
		"2abc": 2,
		"1.9":  1,
		"+2":   2,
		"0x2":  2,
		"-0":   0,
		"00":   0,
	}
	for raw, want := range cases {
		rnd := &countingRand{}
		d := NewDecoder([]domain.Category{"SEO"}, WithRand(rnd))
		snap := d.ParseSnapshot("ScoreSEO=" + EscapeComponent(raw))
		if got := snap.Score("SEO"); got != want {
			t.Fatalf("%q: got %d, want %d", raw, got, want)
		}
		if rnd.calls != 0 {
			t.Fatalf("%q: random fallback used for a parsable value", raw)
		}
	}
}

func TestLiteralZeroAndParsedZeroAgree(t *testing.T) {
	d := NewDecoder([]domain.Category{"SEO"}, WithRand(fixedRand(2)))
	literal := d.ParseSnapshot("?&ScoreSEO=0")
	parsed := d.ParseSnapshot("?&ScoreSEO=0000")
	if literal.Score("SEO") != 0 || parsed.Score("SEO") != 0 {
		t.Fatalf("expected both zero, got literal=%d parsed=%d", literal.Score("SEO"), parsed.Score("SEO"))
	}
}

func TestMissingParameterFallsBackInRange(t *testing.T) {
	d := NewDecoder(defaultCategories(), WithRand(rand.New(rand.NewSource(7))))
	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		snap := d.ParseSnapshot("/results?&Name=Ada")
		for _, s := range snap.Scores {
			if s.Score < 0 || s.Score > 2 {
				t.Fatalf("fallback out of range: %+v", s)
			}
			seen[s.Score] = true
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected every value in {0,1,2} to appear, saw %v", seen)
	}
}

func TestMalformedParameterUsesFallback(t *testing.T) {
	for _, raw := range []string{"ScoreSEO=", "ScoreSEO=abc", "ScoreSEO=--1", "ScoreSEO", "ScoreSEO=0x", "ScoreSEO=0xg", "ScoreSEO=-0X"} {
		rnd := &countingRand{}
		d := NewDecoder([]domain.Category{"SEO"}, WithRand(rnd))
		snap := d.ParseSnapshot(raw)
		if rnd.calls != 1 {
			t.Fatalf("%q: expected one fallback draw, got %d", raw, rnd.calls)
		}
		if snap.Score("SEO") != 2 {
			t.Fatalf("%q: expected injected fallback 2, got %d", raw, snap.Score("SEO"))
		}
	}
}

func TestParseSnapshotAcceptsFullURL(t *testing.T) {
	d := NewDecoder([]domain.Category{"SEO", "Social"}, WithRand(fixedRand(0)))
	snap := d.ParseSnapshot("https://example.com/results?&ScoreSEO=2&ScoreSocial=1&Name=Jane%20Doe#chart")
	want := domain.Snapshot{
		Scores: []domain.CategoryScore{{Category: "SEO", Score: 2}, {Category: "Social", Score: 1}},
		Name:   "Jane Doe",
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSnapshotKeepsRawQuestionMarkInValue(t *testing.T) {
	rnd := &countingRand{}
	d := NewDecoder([]domain.Category{"SEO", "Social"}, WithRand(rnd))
	want := domain.Snapshot{
		Scores: []domain.CategoryScore{{Category: "SEO", Score: 2}, {Category: "Social", Score: 1}},
		Name:   "Ada",
	}
	for _, raw := range []string{
		"&ScoreSEO=2&ScoreSocial=1&ref=https://partner.example/?src=mail&Name=Ada",
		"?&ScoreSEO=2&ScoreSocial=1&ref=https://partner.example/?src=mail&Name=Ada",
		"https://example.com/results?&ScoreSEO=2&ScoreSocial=1&ref=https://partner.example/?src=mail&Name=Ada",
	} {
		if diff := cmp.Diff(want, d.ParseSnapshot(raw)); diff != "" {
			t.Fatalf("%q: snapshot mismatch (-want +got):\n%s", raw, diff)
		}
	}
	if rnd.calls != 0 {
		t.Fatalf("random fallback used %d times for present scores", rnd.calls)
	}

	got := BuildShareURL("/results", "&ScoreSEO=2&ref=https://partner.example/?src=mail", want)
	wantURL := "/results?&ScoreSEO=2&ref=https%3A%2F%2Fpartner.example%2F%3Fsrc%3Dmail&ScoreSocial=1&Name=Ada"
	if got != wantURL {
		t.Fatalf("share url\n got: %s\nwant: %s", got, wantURL)
	}
}

func TestEmptyNameIsAbsent(t *testing.T) {
	d := NewDecoder([]domain.Category{"SEO"})
	if snap := d.ParseSnapshot("?&ScoreSEO=1&Name="); snap.Name != "" {
		t.Fatalf("expected no name, got %q", snap.Name)
	}
}

func TestShareURLRoundTrip(t *testing.T) {
	names := []string{"", "Ada", "Jane Doe", "O'Brien & Sons", "50% + more", "Zoë 東京", "a=b?c#d"}
	d := NewDecoder(defaultCategories(), WithRand(fixedRand(1)))

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		snap := domain.Snapshot{Name: names[i%len(names)]}
		for _, c := range defaultCategories() {
			snap.Scores = append(snap.Scores, domain.CategoryScore{Category: c, Score: r.Intn(3)})
		}

		shared := BuildShareURL("https://example.com/results", "", snap)
		got := d.ParseSnapshot(shared)
		if diff := cmp.Diff(snap, got); diff != "" {
			t.Fatalf("round trip of %q mismatch (-want +got):\n%s", shared, diff)
		}
		again := d.ParseSnapshot(BuildShareURL("https://example.com/results", shared, got))
		if diff := cmp.Diff(snap, again); diff != "" {
			t.Fatalf("second round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestShareURLPreservesUnknownParams(t *testing.T) {
	snap := domain.Snapshot{
		Scores: []domain.CategoryScore{{Category: "SEO", Score: 2}, {Category: "Social", Score: 0}},
		Name:   "Al",
	}
	got := BuildShareURL("https://example.com/results", "?&utm_source=li&ScoreSEO=9&ref=a%20b&ScoreSEO=1", snap)
	want := "https://example.com/results?&utm_source=li&ScoreSEO=2&ref=a+b&ScoreSocial=0&Name=Al"
	if got != want {
		t.Fatalf("share url\n got: %s\nwant: %s", got, want)
	}

	params := ParseParams(queryPart(got))
	if v, _ := params.Get("utm_source"); v != "li" {
		t.Fatalf("utm_source lost: %q", v)
	}
	if v, _ := params.Get("ref"); v != "a b" {
		t.Fatalf("ref changed: %q", v)
	}
}

func TestShareURLClampsOutOfRangeSnapshot(t *testing.T) {
	snap := domain.Snapshot{Scores: []domain.CategoryScore{{Category: "SEO", Score: 5}}}
	got := BuildShareURL("/results", "", snap)
	if got != "/results?&ScoreSEO=2" {
		t.Fatalf("unexpected share url %s", got)
	}
}
