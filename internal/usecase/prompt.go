package usecase

import (
	"strings"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
)

// WindowSize number of prior messages sent to the external service
const WindowSize = 6

// SystemInstruction prefix of every remote prompt
const SystemInstruction = "You are Dermora, a friendly skincare assistant.\n" +
	"- You ONLY answer questions about skincare.\n" +
	"- You REFUSE to answer any questions unrelated to skincare. Instead, you must say: '" + RefusalReply + "'\n" +
	"- You answer skincare questions clearly and helpfully.\n" +
	"- You PROVIDE solutions and ASK MINIMUM questions.\n" +
	"- If the user's question is not about skincare, do NOT answer it.\n"

// RefusalReply exact text the model is told to use for off-topic input
const RefusalReply = "Sorry, I can only answer skincare-related questions. Please ask me about skincare!"

// ConversationWindow last n messages of history in chronological order.
// The returned slice never aliases history.
func ConversationWindow(history []entity.Message, n int) []entity.Message {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]entity.Message, len(history))
	copy(out, history)
	return out
}

// Transcript renders messages as "<Assistant|User>: <text>" lines
func Transcript(messages []entity.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.Author()+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}

// GuideSeparator joins retrieved guide passages
const GuideSeparator = "\n---\n"

// BuildPrompt system instruction, windowed transcript, then the utterance last
func BuildPrompt(utterance string, history []entity.Message) string {
	return BuildGuidedPrompt(utterance, history, nil)
}

// BuildGuidedPrompt BuildPrompt with guide passages placed between the
// system instruction and the transcript. No passages gives BuildPrompt's text.
func BuildGuidedPrompt(utterance string, history []entity.Message, guide []string) string {
	var sb strings.Builder
	sb.WriteString(SystemInstruction)
	if len(guide) > 0 {
		sb.WriteString("\nBase your answer on this skincare guide where it applies:\n")
		sb.WriteString(strings.Join(guide, GuideSeparator))
	}
	sb.WriteString("\n\nConversation so far:\n")
	if t := Transcript(ConversationWindow(history, WindowSize)); t != "" {
		sb.WriteString(t)
		sb.WriteString("\n")
	}
	sb.WriteString(entity.AuthorUser)
	sb.WriteString(": ")
	sb.WriteString(utterance)
	return sb.String()
}
