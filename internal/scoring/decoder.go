package scoring

import (
	"math/rand"

	"clarity-score-service/internal/domain"
	"go.uber.org/zap"
)

// Intner is the random source used for missing score parameters.
// *math/rand.Rand satisfies it.
type Intner interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Decoder reconstructs snapshots from results URLs.
type Decoder struct {
	categories []domain.Category
	rnd        Intner
	logger     *zap.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithRand replaces the fallback random source, mainly for tests.
func WithRand(r Intner) Option {
	return func(d *Decoder) { d.rnd = r }
}

// WithLogger enables debug logging of fallback decisions.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// NewDecoder builds a decoder for the given category enumeration order.
func NewDecoder(categories []domain.Category, opts ...Option) *Decoder {
	d := &Decoder{
		categories: append([]domain.Category(nil), categories...),
		rnd:        globalRand{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Categories returns the enumeration order the decoder reads.
func (d *Decoder) Categories() []domain.Category {
	return d.categories
}

// ParseSnapshot reads Score<Category> and Name from raw, which may be a full
// URL, a "?"-prefixed query or a bare query. It never fails: a missing or
// unparsable score falls back to a random value in [0, 2], and every score is
// clamped.
func (d *Decoder) ParseSnapshot(raw string) domain.Snapshot {
	params := ParseParams(queryPart(raw))

	scores := make([]domain.CategoryScore, 0, len(d.categories))
	for _, c := range d.categories {
		key := ScoreParam(string(c))
		value, present := params.Get(key)

		var score int
		if value == "0" {
			score = 0
		} else if n, ok := parseLeadingInt(value); present && ok {
			score = n
		} else {
			score = d.rnd.Intn(MaxCategoryScore + 1)
			d.logger.Debug("score parameter unusable, using random fallback",
				zap.String("key", key),
				zap.Bool("present", present),
				zap.Int("score", score),
			)
		}
		scores = append(scores, domain.CategoryScore{Category: c, Score: Clamp(score)})
	}

	name, _ := params.Get(NameParam)
	return domain.Snapshot{Scores: scores, Name: name}
}

// BuildShareURL rewrites the current query with the clamped snapshot scores and
// the name, keeping every other parameter where it was, and serializes it behind
// base with the "?&" separator.
func BuildShareURL(base, currentQuery string, snapshot domain.Snapshot) string {
	params := ParseParams(queryPart(currentQuery))
	for _, s := range snapshot.Scores {
		params.Set(ScoreParam(string(s.Category)), itoa(Clamp(s.Score)))
	}
	if snapshot.Name != "" {
		params.Set(NameParam, snapshot.Name)
	}
	return base + "?&" + params.Encode()
}
