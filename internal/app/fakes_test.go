package app

import (
	"context"
	"errors"
	"sync"

	"coursegen/internal/ai"
	"coursegen/internal/model"
)

type completerFunc func(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)

func (f completerFunc) Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	return f(ctx, cfg, messages)
}

type stubAnalyzer struct {
	content *model.CourseContent
	err     error
}

func (a *stubAnalyzer) Analyze(ctx context.Context, data []byte, mediaType, fileName string) (*model.CourseContent, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.content, nil
}

// stubEnricher blocks every derivation until gate is closed, when set.
type stubEnricher struct {
	gate chan struct{}

	qna      *model.QnASet
	qnaErr   error
	cards    *model.FlashcardSet
	cardsErr error
	panicQnA bool

	mu     sync.Mutex
	inputs []string
}

func (e *stubEnricher) wait(ctx context.Context, input string) {
	e.mu.Lock()
	e.inputs = append(e.inputs, input)
	e.mu.Unlock()
	if e.gate != nil {
		<-e.gate
	}
}

func (e *stubEnricher) GenerateQnA(ctx context.Context, courseContentJSON string) (*model.QnASet, error) {
	e.wait(ctx, courseContentJSON)
	if e.panicQnA {
		panic("boom")
	}
	return e.qna, e.qnaErr
}

func (e *stubEnricher) GenerateFlashcards(ctx context.Context, courseContentJSON string) (*model.FlashcardSet, error) {
	e.wait(ctx, courseContentJSON)
	return e.cards, e.cardsErr
}

func (e *stubEnricher) seen() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.inputs...)
}

type recordingReporter struct {
	mu     sync.Mutex
	events []model.EnrichmentEvent
}

func (r *recordingReporter) Report(ctx context.Context, event model.EnrichmentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingReporter) byField() map[string]model.EnrichmentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]model.EnrichmentEvent, len(r.events))
	for _, e := range r.events {
		out[e.Field] = e
	}
	return out
}

type memoryListCache struct {
	mu          sync.Mutex
	lists       map[uint][]model.CourseSummary
	versions    map[uint]int64
	invalidated []uint
	staleFills  int
}

func newMemoryListCache() *memoryListCache {
	return &memoryListCache{
		lists:    map[uint][]model.CourseSummary{},
		versions: map[uint]int64{},
	}
}

func (c *memoryListCache) GetList(ctx context.Context, userID uint) ([]model.CourseSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.lists[userID]
	return list, ok, nil
}

func (c *memoryListCache) Version(ctx context.Context, userID uint) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[userID], nil
}

func (c *memoryListCache) SetList(ctx context.Context, userID uint, version int64, list []model.CourseSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[userID] != version {
		c.staleFills++
		return errors.New("stale course list")
	}
	c.lists[userID] = list
	return nil
}

func (c *memoryListCache) Invalidate(ctx context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[userID]++
	delete(c.lists, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}
