package symptoms

import (
	"errors"
	"fmt"
	"strings"
)

var ErrValidation = errors.New("validation failed")

// Condition is one possible explanation for the described symptoms.
// Probability is a rough percentage, not a diagnosis.
type Condition struct {
	Name        string `json:"name"`
	Probability int    `json:"probability"`
	Description string `json:"description"`
}

// rule matches a condition when any of its keywords appears in the
// lowercased symptom text.
type rule struct {
	keywords  []string
	condition Condition
}

// defaultRules is the baseline triage table. Order matters: results come
// back in table order, which puts the most common explanations first.
var defaultRules = []rule{
	{
		keywords: []string{"headache", "head pain", "migraine", "head hurts"},
		condition: Condition{
			Name:        "Tension Headache",
			Probability: 70,
			Description: "Often triggered by stress, dehydration or eye strain. Rest, fluids and over-the-counter pain relief usually help.",
		},
	},
	{
		keywords: []string{"runny nose", "sneezing", "congestion", "stuffy nose", "blocked nose"},
		condition: Condition{
			Name:        "Common Cold",
			Probability: 65,
			Description: "A viral infection of the nose and throat. Symptoms typically resolve within a week with rest and fluids.",
		},
	},
	{
		keywords: []string{"sore throat", "cough", "fever", "hoarse"},
		condition: Condition{
			Name:        "Upper Respiratory Infection",
			Probability: 55,
			Description: "An infection of the airways, usually viral. See a doctor if fever persists beyond three days or breathing becomes difficult.",
		},
	},
	{
		keywords: []string{"stomach", "nausea", "vomit", "diarrhea", "abdominal"},
		condition: Condition{
			Name:        "Gastroenteritis",
			Probability: 50,
			Description: "Irritation of the stomach and intestines. Stay hydrated; seek care if symptoms last more than two days.",
		},
	},
	{
		keywords: []string{"rash", "itch", "hives", "skin"},
		condition: Condition{
			Name:        "Contact Dermatitis",
			Probability: 45,
			Description: "Skin reaction to an irritant or allergen. Avoid the trigger; a doctor can prescribe topical treatment if it spreads.",
		},
	},
}

// CheckInput is the payload for POST /api/symptom-checker.
type CheckInput struct {
	Symptoms string `json:"symptoms"`
}

// Checker matches free-text symptom descriptions against the rule table.
// It is informational only and never a substitute for seeing a doctor.
type Checker struct {
	rules []rule
}

// NewChecker creates a checker with the baseline rule table.
func NewChecker() *Checker {
	return &Checker{rules: defaultRules}
}

// Check returns the conditions whose keywords appear in the description,
// in table order. An unmatched description returns an empty list, not an
// error: absence of a match is a valid answer.
func (c *Checker) Check(in CheckInput) ([]Condition, error) {
	text := strings.ToLower(strings.TrimSpace(in.Symptoms))
	if text == "" {
		return nil, fmt.Errorf("%w: symptoms description is required", ErrValidation)
	}

	matched := []Condition{}
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, r.condition)
				break
			}
		}
	}
	return matched, nil
}
