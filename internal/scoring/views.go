package scoring

import (
	"math"
	"strconv"

	"clarity-score-service/internal/domain"
)

// DefaultRingRadius matches the r attribute of the ring SVG circles.
const DefaultRingRadius = 45.0

func itoa(n int) string { return strconv.Itoa(n) }

// SubCategoryAggregates sums member scores for every group. Scores are taken as
// already clamped.
func SubCategoryAggregates(snapshot domain.Snapshot, groups []domain.SubCategoryGroup) []domain.SubCategoryAggregate {
	out := make([]domain.SubCategoryAggregate, 0, len(groups))
	for _, g := range groups {
		total := 0
		for _, m := range g.Members {
			total += snapshot.Score(m)
		}
		maxTotal := len(g.Members) * MaxCategoryScore
		out = append(out, domain.SubCategoryAggregate{
			Label:   g.Label,
			Total:   total,
			Max:     maxTotal,
			Percent: roundPercent(total, maxTotal),
		})
	}
	return out
}

// OverallPercentage is floor(sum / (count*2) * 100).
func OverallPercentage(snapshot domain.Snapshot) int {
	if len(snapshot.Scores) == 0 {
		return 0
	}
	total := 0
	for _, s := range snapshot.Scores {
		total += s.Score
	}
	return total * 100 / (len(snapshot.Scores) * MaxCategoryScore)
}

// DialRotation maps a percentage onto the half-circle dial, in degrees.
func DialRotation(percent int) int {
	return percent * 180 / 100
}

// Rings computes stroke geometry for each sub-category ring of radius r.
func Rings(aggregates []domain.SubCategoryAggregate, radius float64) []domain.Ring {
	circumference := 2 * math.Pi * radius
	rings := make([]domain.Ring, 0, len(aggregates))
	for _, a := range aggregates {
		rings = append(rings, domain.Ring{
			Label:      a.Label,
			Percent:    a.Percent,
			DashArray:  circumference,
			DashOffset: float64(100-a.Percent) / 100 * circumference,
		})
	}
	return rings
}

// ServiceCards highlights the categories that reached the maximum score.
func ServiceCards(snapshot domain.Snapshot) []domain.ServiceCard {
	cards := make([]domain.ServiceCard, 0, len(snapshot.Scores))
	for _, s := range snapshot.Scores {
		cards = append(cards, domain.ServiceCard{
			Category:    s.Category,
			Highlighted: s.Score == MaxCategoryScore,
		})
	}
	return cards
}

// Chart lays the snapshot out for the radar chart.
func Chart(snapshot domain.Snapshot) domain.ChartData {
	data := domain.ChartData{
		Labels: make([]domain.Category, 0, len(snapshot.Scores)),
		Values: make([]int, 0, len(snapshot.Scores)),
	}
	for _, s := range snapshot.Scores {
		data.Labels = append(data.Labels, s.Category)
		data.Values = append(data.Values, s.Score)
	}
	return data
}

// roundPercent rounds part/whole*100 half up, returning 0 for an empty whole.
func roundPercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
