package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/modules/generation/prompts"
)

const tutorHistoryTurns = 10

type TutorRole string

const (
	TutorRoleUser  TutorRole = "user"
	TutorRoleTutor TutorRole = "tutor"
)

type TutorTurn struct {
	Role TutorRole `json:"role"`
	Text string    `json:"text"`
}

// TutorReply answers a learner message in the checkpoint's persona. The
// local provider runs in JSON mode, so only the cloud provider is asked;
// a templated reply covers every failure.
func (g *Generator) TutorReply(ctx context.Context, topic string, persona study.Persona, history []TutorTurn, message string) (string, error) {
	var strategies []Strategy[string]
	if g.cloud != nil {
		strategies = append(strategies, Attempt("cloud", func(ctx context.Context) (string, error) {
			prompt, err := prompts.Build(prompts.PromptTutorReply, prompts.Input{
				Topic:        topic,
				Persona:      string(persona),
				PersonaGuide: persona.Guide(),
				Conversation: Conversation(history),
				UserMessage:  message,
			})
			if err != nil {
				return "", err
			}
			raw, err := g.generate(ctx, g.cloud, "tutor", prompt)
			if err != nil {
				return "", err
			}
			reply := strings.TrimSpace(raw)
			if reply == "" {
				return "", ErrUnusable
			}
			return reply, nil
		}))
	}
	strategies = append(strategies, Attempt("template", func(ctx context.Context) (string, error) {
		return FallbackTutorReply(persona, topic), nil
	}))
	return FirstSuccess(ctx, g.log, "tutor", strategies...)
}

// Conversation renders the most recent turns as "User:"/"Tutor:" lines.
func Conversation(history []TutorTurn) string {
	if len(history) > tutorHistoryTurns {
		history = history[len(history)-tutorHistoryTurns:]
	}
	lines := make([]string, 0, len(history))
	for _, t := range history {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		speaker := "Tutor"
		if t.Role == TutorRoleUser {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+text)
	}
	return strings.Join(lines, "\n")
}

func FallbackTutorReply(persona study.Persona, topic string) string {
	name := strings.TrimSpace(string(persona))
	if name == "" {
		name = "Tutor"
	}
	return fmt.Sprintf("%s: For %s, a helpful way to think about this is to break it into core ideas, examples, and a quick practice step. What part is confusing you most?", name, topic)
}
