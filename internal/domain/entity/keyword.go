package entity

// KeywordRule canned reply for utterances containing Trigger.
// Trigger is always lowercase.
type KeywordRule struct {
	Trigger  string
	Response string
}

// DefaultKeywordRules built-in rules in declared order. Order is significant:
// the first rule whose trigger occurs in the utterance wins.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{
			Trigger:  "retinol",
			Response: "Start with retinol 2-3 times per week and gradually increase! Always use it at night and follow with moisturizer. Don't forget SPF the next morning! ✨",
		},
		{
			Trigger:  "routine",
			Response: "Perfect routine order: Cleanser → Toner → Serum → Moisturizer → SPF (AM) or Night Cream (PM). Remember: thinnest to thickest consistency! 💫",
		},
		{
			Trigger:  "sensitive",
			Response: "For sensitive skin, look for fragrance-free products with gentle ingredients like ceramides, niacinamide, and hyaluronic acid. Always patch test first! 🌸",
		},
		{
			Trigger:  "spf",
			Response: "Choose SPF 30+ for daily use! Mineral sunscreens (zinc oxide, titanium dioxide) are great for sensitive skin. Reapply every 2 hours! ☀️",
		},
	}
}

// QuickReplies suggested first questions shown with the greeting
func QuickReplies() []string {
	return []string{
		"How often should I use retinol?",
		"What's the best order for my routine?",
		"Help with sensitive skin",
		"SPF recommendations",
	}
}

// GreetingText first assistant message of every session
const GreetingText = "Hi gorgeous! 💕 I'm Dermora AI, here to help you with your skincare journey. What can I assist you with today?"
