package entity

import "time"

// Quiz question IDs
const (
	QuestionSkinType  = "skinType"
	QuestionConcerns  = "concerns"
	QuestionWeather   = "weather"
	QuestionLifestyle = "lifestyle"
)

// QuizAnswers answers collected by the onboarding quiz
type QuizAnswers struct {
	SkinType    string     `json:"skinType"`
	Concerns    []string   `json:"concerns"`
	Weather     string     `json:"weather"`
	Lifestyle   string     `json:"lifestyle"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// QuizOption selectable answer
type QuizOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// QuizQuestion one quiz step
type QuizQuestion struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Multiple bool         `json:"multiple"`
	Options  []QuizOption `json:"options"`
}

// HasOption reports whether value is one of the question's options
func (q QuizQuestion) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// QuizQuestions the quiz steps in order
func QuizQuestions() []QuizQuestion {
	return []QuizQuestion{
		{
			ID:       QuestionSkinType,
			Title:    "What's your skin type?",
			Subtitle: "Choose the one that sounds most like you",
			Options: []QuizOption{
				{Value: "oily", Label: "Oily", Description: "Shiny T-zone, visible pores"},
				{Value: "dry", Label: "Dry", Description: "Tight, flaky, sometimes rough"},
				{Value: "combination", Label: "Combination", Description: "Oily T-zone, dry cheeks"},
				{Value: "sensitive", Label: "Sensitive", Description: "Easily irritated, reactive"},
			},
		},
		{
			ID:       QuestionConcerns,
			Title:    "What are your main skin concerns?",
			Subtitle: "Select all that apply - we'll prioritize them for you",
			Multiple: true,
			Options: []QuizOption{
				{Value: "acne", Label: "Acne & Breakouts"},
				{Value: "aging", Label: "Fine Lines & Aging"},
				{Value: "pigmentation", Label: "Dark Spots"},
				{Value: "dullness", Label: "Dull Skin"},
				{Value: "pores", Label: "Large Pores"},
			},
		},
		{
			ID:       QuestionWeather,
			Title:    "What's your climate like?",
			Subtitle: "Your environment affects your skin needs",
			Options: []QuizOption{
				{Value: "hot-humid", Label: "Hot & Humid", Description: "Tropical, sticky weather"},
				{Value: "hot-dry", Label: "Hot & Dry", Description: "Desert-like conditions"},
				{Value: "mild", Label: "Mild & Temperate", Description: "Moderate seasons"},
				{Value: "cold-dry", Label: "Cold & Dry", Description: "Winter-like conditions"},
			},
		},
		{
			ID:       QuestionLifestyle,
			Title:    "How's your daily routine?",
			Subtitle: "We'll match your skincare to your lifestyle",
			Options: []QuizOption{
				{Value: "minimal", Label: "Keep It Simple", Description: "2-3 products max"},
				{Value: "moderate", Label: "Balanced Routine", Description: "4-6 products is perfect"},
				{Value: "extensive", Label: "Full Ritual", Description: "I love a complete routine"},
			},
		},
	}
}
