package app

import (
	"context"
	"fmt"
	"strings"

	"coursegen/internal/ai"
	"coursegen/internal/model"
	"coursegen/internal/pkg/jsonreply"
)

// EnrichmentGenerator derives Q&A and flashcards from serialized course
// content. It holds no state between calls.
type EnrichmentGenerator struct {
	llm        ChatCompleter
	chatConfig ai.ChatConfig
}

func NewEnrichmentGenerator(llm ChatCompleter, chatConfig ai.ChatConfig) *EnrichmentGenerator {
	return &EnrichmentGenerator{llm: llm, chatConfig: chatConfig}
}

func (g *EnrichmentGenerator) GenerateQnA(ctx context.Context, courseContentJSON string) (*model.QnASet, error) {
	var set model.QnASet
	if err := g.generate(ctx, qnaSystemPrompt, courseContentJSON, &set); err != nil {
		return nil, err
	}
	if len(set.Items) == 0 {
		return nil, fmt.Errorf("%w: no qna items", ErrMalformedResponse)
	}
	return &set, nil
}

func (g *EnrichmentGenerator) GenerateFlashcards(ctx context.Context, courseContentJSON string) (*model.FlashcardSet, error) {
	var set model.FlashcardSet
	if err := g.generate(ctx, flashcardsSystemPrompt, courseContentJSON, &set); err != nil {
		return nil, err
	}
	if len(set.Flashcards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards", ErrMalformedResponse)
	}
	return &set, nil
}

func (g *EnrichmentGenerator) generate(ctx context.Context, systemPrompt, courseContentJSON string, out any) error {
	if strings.TrimSpace(courseContentJSON) == "" {
		return ErrInvalidInput
	}
	messages := []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Course:\n" + courseContentJSON},
	}
	reply, err := g.llm.Complete(ctx, g.chatConfig, messages)
	if err != nil {
		return modelError(err)
	}
	return jsonreply.Decode(reply, out)
}
