package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"coursegen/internal/ai"
	"coursegen/internal/model"
	"coursegen/internal/pkg/jsonreply"
	"coursegen/internal/pkg/pdfextract"
)

var (
	ErrModelUnavailable  = ai.ErrModelUnavailable
	ErrMalformedResponse = jsonreply.ErrMalformedResponse
)

// ChatCompleter is the model capability shared by analyzer and generator.
type ChatCompleter interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// ContentAnalyzer turns an uploaded file into a CourseContent with one model call.
type ContentAnalyzer struct {
	llm            ChatCompleter
	chatConfig     ai.ChatConfig
	extractPDFText bool
}

func NewContentAnalyzer(llm ChatCompleter, chatConfig ai.ChatConfig, extractPDFText bool) *ContentAnalyzer {
	return &ContentAnalyzer{
		llm:            llm,
		chatConfig:     chatConfig,
		extractPDFText: extractPDFText,
	}
}

// Analyze sends data to the model as a named attachment; fileName may be empty.
func (a *ContentAnalyzer) Analyze(ctx context.Context, data []byte, mediaType, fileName string) (*model.CourseContent, error) {
	mediaType = strings.TrimSpace(mediaType)
	if len(data) == 0 || mediaType == "" {
		return nil, ErrInvalidInput
	}

	attachment := a.attachment(data, mediaType, fileName)
	messages := []ai.ChatMessage{
		{Role: "system", Content: analyzeSystemPrompt},
		{Role: "user", Content: analyzeExampleRequest},
		{Role: "assistant", Content: analyzeExampleReply},
		{Role: "user", Content: analyzeUserPrompt, Attachment: attachment},
	}

	reply, err := a.llm.Complete(ctx, a.chatConfig, messages)
	if err != nil {
		return nil, modelError(err)
	}

	var content model.CourseContent
	if err := jsonreply.Decode(reply, &content); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content.CourseTitle) == "" || len(content.Chapters) == 0 {
		return nil, fmt.Errorf("%w: course without title or chapters", ErrMalformedResponse)
	}
	return &content, nil
}

// attachment sends PDFs as extracted text when configured, falling back to
// the original bytes if the document has no text layer.
func (a *ContentAnalyzer) attachment(data []byte, mediaType, fileName string) *ai.Attachment {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "." || name == "/" {
		name = ""
	}
	if a.extractPDFText && strings.HasPrefix(strings.ToLower(mediaType), "application/pdf") {
		if text, err := pdfextract.ExtractText(data); err == nil {
			return &ai.Attachment{MediaType: "text/plain", Name: name, Data: []byte(text)}
		}
	}
	return &ai.Attachment{MediaType: mediaType, Name: name, Data: data}
}

// modelError keeps the taxonomy closed: anything the capability returns that
// is not already classified counts as the model being unavailable.
func modelError(err error) error {
	if errors.Is(err, ErrModelUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
}
