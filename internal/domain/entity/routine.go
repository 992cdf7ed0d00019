package entity

const (
	Morning = "morning"
	Evening = "evening"
)

// RoutineItem dashboard checklist entry
type RoutineItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TimeOfDay string `json:"timeOfDay"`
	Completed bool   `json:"completed"`
}

// RoutineProgress completion percentages
type RoutineProgress struct {
	Morning float64 `json:"morning"`
	Evening float64 `json:"evening"`
	Total   float64 `json:"total"`
}

// Tip dashboard tip card
type Tip struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DefaultRoutine starting checklist for a new session
func DefaultRoutine() []RoutineItem {
	return []RoutineItem{
		{ID: "1", Name: "Gentle Cleanser", TimeOfDay: Morning},
		{ID: "2", Name: "Vitamin C Serum", TimeOfDay: Morning},
		{ID: "3", Name: "Moisturizer", TimeOfDay: Morning},
		{ID: "4", Name: "SPF 30+", TimeOfDay: Morning},
		{ID: "5", Name: "Cleansing Oil", TimeOfDay: Evening},
		{ID: "6", Name: "Gentle Cleanser", TimeOfDay: Evening},
		{ID: "7", Name: "Retinol Serum", TimeOfDay: Evening},
		{ID: "8", Name: "Night Moisturizer", TimeOfDay: Evening},
	}
}

// DailyTips tips shown on the dashboard
func DailyTips() []Tip {
	return []Tip{
		{Title: "Consistency is Key! 🗝️", Content: "Apply products to slightly damp skin for better absorption and hydration."},
		{Title: "Morning Glow ✨", Content: "Always finish your morning routine with SPF, even on cloudy days!"},
		{Title: "Evening Ritual 🌙", Content: "Use retinol products at night only, and always follow with moisturizer."},
	}
}
