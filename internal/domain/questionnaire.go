package domain

import "fmt"

// DefaultQuestionnaireID identifies the built-in questionnaire.
const DefaultQuestionnaireID = "clarity"

// QuestionRef identifies one yes/no question inside a category.
type QuestionRef struct {
	Category Category `json:"category" yaml:"category"`
	Index    int      `json:"index" yaml:"index"`
	Prompt   string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// SubCategoryGroup maps a sub-category label to its member categories.
type SubCategoryGroup struct {
	Label   string     `json:"label" yaml:"label"`
	Members []Category `json:"members" yaml:"members"`
}

// Questionnaire is the static layout shared by the quiz and the results page.
// Categories is the enumeration order of the wire format.
type Questionnaire struct {
	ID         string             `json:"id" yaml:"id"`
	Categories []Category         `json:"categories" yaml:"categories"`
	Questions  []QuestionRef      `json:"questions" yaml:"questions"`
	Groups     []SubCategoryGroup `json:"groups" yaml:"groups"`
	Steps      int                `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// StepCount returns the number of quiz steps, defaulting to one step per question
// plus the contact step.
func (q Questionnaire) StepCount() int {
	if q.Steps > 0 {
		return q.Steps
	}
	return len(q.Questions) + 1
}

// Validate checks the questionnaire for internal consistency.
func (q Questionnaire) Validate() error {
	if len(q.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidQuestionnaire)
	}
	known := make(map[Category]struct{}, len(q.Categories))
	for _, c := range q.Categories {
		if c == "" {
			return fmt.Errorf("%w: empty category name", ErrInvalidQuestionnaire)
		}
		if _, dup := known[c]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidQuestionnaire, c)
		}
		known[c] = struct{}{}
	}

	type key struct {
		c Category
		i int
	}
	seen := make(map[key]struct{}, len(q.Questions))
	for _, qr := range q.Questions {
		if _, ok := known[qr.Category]; !ok {
			return fmt.Errorf("%w: question references unknown category %q", ErrInvalidQuestionnaire, qr.Category)
		}
		k := key{qr.Category, qr.Index}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: duplicate question %s/%d", ErrInvalidQuestionnaire, qr.Category, qr.Index)
		}
		seen[k] = struct{}{}
	}

	for _, g := range q.Groups {
		if g.Label == "" {
			return fmt.Errorf("%w: group without label", ErrInvalidQuestionnaire)
		}
		for _, m := range g.Members {
			if _, ok := known[m]; !ok {
				return fmt.Errorf("%w: group %q references unknown category %q", ErrInvalidQuestionnaire, g.Label, m)
			}
		}
	}
	return nil
}

// DefaultQuestionnaire returns the deployed ClarityScore layout: eight categories
// with one question each and three sub-categories.
func DefaultQuestionnaire() Questionnaire {
	categories := []Category{
		"Strategy", "Operations", "Creative", "Content",
		"Advertising", "EmailSMS", "Social", "SEO",
	}
	questions := make([]QuestionRef, 0, len(categories))
	for _, c := range categories {
		questions = append(questions, QuestionRef{Category: c, Index: 1})
	}
	return Questionnaire{
		ID:         DefaultQuestionnaireID,
		Categories: categories,
		Questions:  questions,
		Groups:     DefaultGroups(),
	}
}

// DefaultGroups is the sub-category table the results page was designed around.
func DefaultGroups() []SubCategoryGroup {
	return []SubCategoryGroup{
		{Label: "Awareness", Members: []Category{"Creative", "Content", "Social"}},
		{Label: "Acquisition", Members: []Category{"Advertising", "EmailSMS", "SEO"}},
		{Label: "Retention", Members: []Category{"Strategy", "Operations"}},
	}
}
