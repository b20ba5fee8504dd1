package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/modules/generation/orchestrator"
	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
)

func (s *studyService) TutorReply(ctx context.Context, id, title string, history []orchestrator.TutorTurn, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("tutor message: %w", pkgerrors.ErrInvalidArgument)
	}
	cp, err := s.checkpoint(ctx, id, title)
	if err != nil {
		return "", err
	}
	persona, _ := study.ParsePersona(cp.TutorPersona)
	return s.gen.TutorReply(ctx, cp.Title, persona, history, message)
}
