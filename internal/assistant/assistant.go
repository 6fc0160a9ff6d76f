// internal/assistant/assistant.go
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"nexoprec/internal/common/logger"
	"nexoprec/internal/models"
)

// FallbackReply is returned when the model is unreachable or answers
// with nothing usable. The widget shows it verbatim, so chat never
// surfaces an error to an applicant.
const FallbackReply = "The assistant is temporarily unavailable. Please reach the organizing committee through its official channels."

// Generator produces a reply for a prompt. Implemented by the Gemini
// client and by test fakes.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Service answers applicant questions about one event, grounding the
// model on the event's form schema, terms and organizer notes.
type Service struct {
	generator Generator
	logger    logger.Logger
}

func NewService(generator Generator, log logger.Logger) *Service {
	return &Service{
		generator: generator,
		logger:    log.WithFields(map[string]interface{}{"component": "assistant"}),
	}
}

// BuildPrompt assembles the grounding context for one question. Recent
// history is replayed inline because the model call is stateless.
func BuildPrompt(event *models.Event, history []models.ChatMessage, question string) string {
	schemaJSON, err := json.Marshal(event.FormSchema)
	if err != nil {
		schemaJSON = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("You are the virtual assistant of a recruitment committee. Answer the applicant's question about this registration form. Be brief and factual; if the answer is not in the context, say you do not know and refer the applicant to the committee.\n\n")
	fmt.Fprintf(&b, "Form context: %s\n", schemaJSON)
	if event.TermsConditions != "" {
		fmt.Fprintf(&b, "Terms and conditions: %s\n", event.TermsConditions)
	}
	if event.AIKnowledge != "" {
		fmt.Fprintf(&b, "Committee notes: %s\n", event.AIKnowledge)
	}

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		start := 0
		if len(history) > 10 {
			start = len(history) - 10
		}
		for _, msg := range history[start:] {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
	}

	fmt.Fprintf(&b, "\nApplicant question: %s", question)
	return b.String()
}

// Reply answers one question. Model failures degrade to FallbackReply
// with a nil error; chat must keep working when the model does not.
func (s *Service) Reply(ctx context.Context, event *models.Event, history []models.ChatMessage, question string) string {
	if s.generator == nil {
		return FallbackReply
	}

	prompt := BuildPrompt(event, history, question)
	answer, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn("assistant reply failed", map[string]interface{}{
			"eventId": event.ID,
			"error":   err.Error(),
		})
		return FallbackReply
	}
	if strings.TrimSpace(answer) == "" {
		return FallbackReply
	}
	return answer
}
