package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"clarity-score-service/internal/domain"
)

// DefaultResultsPath is where the quiz sends respondents when they submit.
const DefaultResultsPath = "/results"

type questionKey struct {
	category domain.Category
	index    int
}

// Collector aggregates yes/no answers for one respondent and publishes the
// navigation URL after every change. It is not safe for concurrent use; the
// owning session serializes access.
type Collector struct {
	path       string
	categories []domain.Category
	scores     map[questionKey]int
	name       string
	onChange   func(domain.Navigation)
}

// NewCollector registers every question at score 0. Category order on the wire
// follows the first appearance of each category in questions.
func NewCollector(path string, questions []domain.QuestionRef) *Collector {
	if path == "" {
		path = DefaultResultsPath
	}
	c := &Collector{
		path:   path,
		scores: make(map[questionKey]int, len(questions)),
	}
	seen := make(map[domain.Category]struct{})
	for _, q := range questions {
		if _, ok := seen[q.Category]; !ok {
			seen[q.Category] = struct{}{}
			c.categories = append(c.categories, q.Category)
		}
		c.scores[questionKey{q.Category, q.Index}] = 0
	}
	return c
}

// OnChange installs the publication hook called after every recorded change.
func (c *Collector) OnChange(fn func(domain.Navigation)) {
	c.onChange = fn
}

// RecordAnswer sets the question score to 1 for yes and 0 for no, overwriting
// any earlier answer, then republishes the navigation URL.
func (c *Collector) RecordAnswer(category domain.Category, questionIndex int, yes bool) error {
	k := questionKey{category, questionIndex}
	if _, ok := c.scores[k]; !ok {
		return fmt.Errorf("%w: %s/%d", domain.ErrQuestionNotFound, category, questionIndex)
	}
	score := 0
	if yes {
		score = 1
	}
	c.scores[k] = score
	c.publish()
	return nil
}

// SetName stores the respondent name and republishes the navigation URL.
func (c *Collector) SetName(name string) {
	c.name = name
	c.publish()
}

// Name returns the respondent name as typed.
func (c *Collector) Name() string {
	return c.name
}

// CategoryTotals sums question scores per category. Totals are not clamped.
func (c *Collector) CategoryTotals() []domain.CategoryScore {
	sums := make(map[domain.Category]int, len(c.categories))
	for k, v := range c.scores {
		sums[k.category] += v
	}
	totals := make([]domain.CategoryScore, 0, len(c.categories))
	for _, cat := range c.categories {
		totals = append(totals, domain.CategoryScore{Category: cat, Score: sums[cat]})
	}
	return totals
}

// Navigation returns the current navigation target.
func (c *Collector) Navigation() domain.Navigation {
	totals := c.CategoryTotals()
	return domain.Navigation{
		URL:    BuildNavigationURL(c.path, c.name, totals),
		Totals: totals,
		Name:   c.name,
	}
}

func (c *Collector) publish() {
	if c.onChange != nil {
		c.onChange(c.Navigation())
	}
}

// BuildNavigationURL lays totals out as Score<Category>=<total>, appends the
// encoded name, and joins them behind the "?&" separator that already shared
// links rely on.
func BuildNavigationURL(path, name string, totals []domain.CategoryScore) string {
	parts := make([]string, 0, len(totals)+1)
	for _, t := range totals {
		parts = append(parts, ScoreParam(string(t.Category))+"="+strconv.Itoa(t.Score))
	}
	parts = append(parts, NameParam+"="+EscapeComponent(name))
	return path + "?&" + strings.Join(parts, "&")
}
