package domain

// Category is a top-level scoring dimension such as "SEO".
type Category string

// CategoryScore pairs a category with an integer score. Slices of CategoryScore
// keep the enumeration order that the wire format is laid out in.
type CategoryScore struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
}

// Lookup returns the score recorded for category c.
func Lookup(scores []CategoryScore, c Category) (int, bool) {
	for _, s := range scores {
		if s.Category == c {
			return s.Score, true
		}
	}
	return 0, false
}

// Snapshot is the set of per-category scores exchanged through the results URL.
// An empty Name means the respondent name is absent.
type Snapshot struct {
	Scores []CategoryScore `json:"scores"`
	Name   string          `json:"name,omitempty"`
}

// Score returns the score for c, or 0 if the snapshot does not carry it.
func (s Snapshot) Score(c Category) int {
	v, _ := Lookup(s.Scores, c)
	return v
}

// SubCategoryAggregate is the summed score of a group of categories.
type SubCategoryAggregate struct {
	Label   string `json:"label"`
	Total   int    `json:"total"`
	Max     int    `json:"max"`
	Percent int    `json:"percent"`
}

// Navigation is what the collector publishes after every change.
type Navigation struct {
	SessionID string          `json:"sessionId,omitempty"`
	URL       string          `json:"url"`
	Link      string          `json:"link,omitempty"`
	Totals    []CategoryScore `json:"totals"`
	Name      string          `json:"name,omitempty"`
}

// ServiceCard tells the results page whether a category's service card is highlighted.
type ServiceCard struct {
	Category    Category `json:"category"`
	Highlighted bool     `json:"highlighted"`
}

// Ring is the stroke geometry for one sub-category percentage ring.
type Ring struct {
	Label      string  `json:"label"`
	Percent    int     `json:"percent"`
	DashArray  float64 `json:"dashArray"`
	DashOffset float64 `json:"dashOffset"`
}

// ChartData is the input of the radar chart renderer.
type ChartData struct {
	Labels []Category `json:"labels"`
	Values []int      `json:"values"`
}

// ShareLink is a fully formed share target for one platform.
type ShareLink struct {
	Platform string `json:"platform"`
	Action   string `json:"action"`
	Href     string `json:"href"`
}

// Export names the image the results page downloads when a screenshot is taken.
type Export struct {
	Filename string `json:"filename"`
}

// Results is the full scored view rendered by the results page.
type Results struct {
	QuestionnaireID string                 `json:"questionnaireId"`
	Snapshot        Snapshot               `json:"snapshot"`
	SubCategories   []SubCategoryAggregate `json:"subCategories"`
	Overall         int                    `json:"overall"`
	DialRotation    int                    `json:"dialRotation"`
	Rings           []Ring                 `json:"rings"`
	ServiceCards    []ServiceCard          `json:"serviceCards"`
	Chart           ChartData              `json:"chart"`
	ShareURL        string                 `json:"shareUrl"`
	ShareLinks      []ShareLink            `json:"shareLinks"`
	Export          Export                 `json:"export"`
}

// StepState is the position of a respondent in the multi-step quiz.
type StepState struct {
	Index    int `json:"index"`
	Total    int `json:"total"`
	Progress int `json:"progress"`
}

// Answer is a single yes/no response.
type Answer struct {
	Category      Category `json:"category"`
	QuestionIndex int      `json:"questionIndex"`
	Yes           bool     `json:"yes"`
}
