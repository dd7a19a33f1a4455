package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"coursegen/internal/model"
)

var ErrCourseNotFound = errors.New("course not found")

type CourseStore interface {
	Create(ctx context.Context, course *model.Course) error
	ListByUserID(ctx context.Context, userID uint) ([]model.CourseSummary, error)
	GetByIDAndUserID(ctx context.Context, id string, userID uint) (*model.Course, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}

type EventStore interface {
	ListByCourseID(ctx context.Context, courseID string, userID uint) ([]model.EnrichmentEvent, error)
}

// CourseListCache caches listings under a per-user version. SetList must
// refuse the fill when Invalidate ran after Version was read.
type CourseListCache interface {
	GetList(ctx context.Context, userID uint) ([]model.CourseSummary, bool, error)
	Version(ctx context.Context, userID uint) (int64, error)
	SetList(ctx context.Context, userID uint, version int64, list []model.CourseSummary) error
	Invalidate(ctx context.Context, userID uint) error
}

// EnrichmentReporter receives the terminal outcome of every background derivation.
type EnrichmentReporter interface {
	Report(ctx context.Context, event model.EnrichmentEvent) error
}

type CourseAnalyzer interface {
	Analyze(ctx context.Context, data []byte, mediaType, fileName string) (*model.CourseContent, error)
}

type CourseEnricher interface {
	GenerateQnA(ctx context.Context, courseContentJSON string) (*model.QnASet, error)
	GenerateFlashcards(ctx context.Context, courseContentJSON string) (*model.FlashcardSet, error)
}

// CourseService runs the upload pipeline: analyze and persist synchronously,
// then enrich the stored record in a detached task.
//
// The two enrichment fields are written by independent partial updates with
// no lock against readers. A fetch may observe the pending sentinel, the
// final value, or one of each.
type CourseService struct {
	store     CourseStore
	events    EventStore
	listCache CourseListCache
	reporter  EnrichmentReporter
	analyzer  CourseAnalyzer
	enricher  CourseEnricher
	log       *zap.Logger

	inflight sync.WaitGroup
}

type UploadInput struct {
	UserID    uint
	FileName  string
	MediaType string
	Data      []byte
}

type UploadResult struct {
	CourseID string              `json:"courseId"`
	Course   model.CourseContent `json:"course"`
}

func NewCourseService(
	store CourseStore,
	events EventStore,
	listCache CourseListCache,
	reporter EnrichmentReporter,
	analyzer CourseAnalyzer,
	enricher CourseEnricher,
	log *zap.Logger,
) *CourseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CourseService{
		store:     store,
		events:    events,
		listCache: listCache,
		reporter:  reporter,
		analyzer:  analyzer,
		enricher:  enricher,
		log:       log,
	}
}

// Upload returns once the analyzed course is stored. Enrichment continues
// after return and its failures never reach the caller.
func (s *CourseService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if input.UserID == 0 || len(input.Data) == 0 || strings.TrimSpace(input.MediaType) == "" {
		return nil, ErrInvalidInput
	}

	content, err := s.analyzer.Analyze(ctx, input.Data, input.MediaType, input.FileName)
	if err != nil {
		s.log.Warn("course analysis failed",
			zap.Uint("user_id", input.UserID),
			zap.String("file_name", input.FileName),
			zap.Error(err))
		return nil, err
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal course content failed: %w", err)
	}

	course := &model.Course{
		UserID:     input.UserID,
		Title:      content.CourseTitle,
		Content:    string(contentJSON),
		QnA:        model.EnrichmentPending,
		Flashcards: model.EnrichmentPending,
	}
	if err := s.store.Create(ctx, course); err != nil {
		return nil, err
	}
	if s.listCache != nil {
		if err := s.listCache.Invalidate(ctx, input.UserID); err != nil {
			s.log.Warn("invalidate course list cache failed",
				zap.Uint("user_id", input.UserID),
				zap.Error(err))
		}
	}

	s.log.Info("course created",
		zap.String("course_id", course.ID),
		zap.Uint("user_id", course.UserID),
		zap.Int("chapters", len(content.Chapters)))

	s.startEnrichment(context.WithoutCancel(ctx), *course)

	return &UploadResult{CourseID: course.ID, Course: *content}, nil
}

func (s *CourseService) ListCourses(ctx context.Context, userID uint) ([]model.CourseSummary, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if s.listCache == nil {
		return s.store.ListByUserID(ctx, userID)
	}

	if cached, hit, err := s.listCache.GetList(ctx, userID); err == nil && hit {
		return cached, nil
	}
	// The version is read before the store so an upload landing in between
	// makes the fill stale instead of hiding the new course.
	version, versionErr := s.listCache.Version(ctx, userID)

	list, err := s.store.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if versionErr != nil {
		s.log.Debug("skip course list cache fill", zap.Uint("user_id", userID), zap.Error(versionErr))
		return list, nil
	}
	if err := s.listCache.SetList(ctx, userID, version, list); err != nil {
		s.log.Debug("course list cache fill skipped", zap.Uint("user_id", userID), zap.Error(err))
	}
	return list, nil
}

func (s *CourseService) GetCourse(ctx context.Context, userID uint, courseID string) (*model.Course, error) {
	courseID = strings.TrimSpace(courseID)
	if userID == 0 || courseID == "" {
		return nil, ErrInvalidInput
	}
	course, err := s.store.GetByIDAndUserID(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// ListEnrichmentEvents returns the recorded enrichment outcomes of a course.
func (s *CourseService) ListEnrichmentEvents(ctx context.Context, userID uint, courseID string) ([]model.EnrichmentEvent, error) {
	if _, err := s.GetCourse(ctx, userID, courseID); err != nil {
		return nil, err
	}
	if s.events == nil {
		return []model.EnrichmentEvent{}, nil
	}
	return s.events.ListByCourseID(ctx, courseID, userID)
}

// Wait blocks until every detached enrichment task has finished.
func (s *CourseService) Wait() {
	s.inflight.Wait()
}

func (s *CourseService) startEnrichment(ctx context.Context, course model.Course) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.enrich(ctx, course)
	}()
}

func (s *CourseService) enrich(ctx context.Context, course model.Course) {
	log := s.log.With(zap.String("course_id", course.ID))

	// No shared cancellation: a failing derivation must not stop the other.
	var g errgroup.Group
	g.Go(func() error {
		return s.deriveField(ctx, log, course, model.FieldQnA, func(ctx context.Context) (any, error) {
			return s.enricher.GenerateQnA(ctx, course.Content)
		})
	})
	g.Go(func() error {
		return s.deriveField(ctx, log, course, model.FieldFlashcards, func(ctx context.Context) (any, error) {
			return s.enricher.GenerateFlashcards(ctx, course.Content)
		})
	})

	if err := g.Wait(); err != nil {
		log.Warn("course enrichment incomplete", zap.Error(err))
		return
	}
	log.Info("course enrichment finished")
}

// deriveField produces one enrichment field and writes its terminal value:
// the serialized result on success, EnrichmentFailed otherwise.
func (s *CourseService) deriveField(
	ctx context.Context,
	log *zap.Logger,
	course model.Course,
	field string,
	derive func(ctx context.Context) (any, error),
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s derivation panicked: %v", field, r)
			s.markFailed(ctx, log, course, field, err)
		}
	}()

	if err := s.writeField(ctx, course.ID, field, derive); err != nil {
		s.markFailed(ctx, log, course, field, err)
		return fmt.Errorf("%s: %w", field, err)
	}

	log.Info("course field enriched", zap.String("field", field))
	s.report(ctx, log, model.EnrichmentEvent{
		CourseID: course.ID,
		UserID:   course.UserID,
		Field:    field,
		Status:   model.EventSucceeded,
	})
	return nil
}

func (s *CourseService) writeField(ctx context.Context, courseID, field string, derive func(ctx context.Context) (any, error)) error {
	value, err := derive(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", field, err)
	}
	return s.store.UpdateFields(ctx, courseID, map[string]any{field: string(payload)})
}

func (s *CourseService) markFailed(ctx context.Context, log *zap.Logger, course model.Course, field string, cause error) {
	log.Error("course enrichment failed", zap.String("field", field), zap.Error(cause))
	if err := s.store.UpdateFields(ctx, course.ID, map[string]any{field: model.EnrichmentFailed}); err != nil {
		log.Error("mark enrichment failed", zap.String("field", field), zap.Error(err))
	}
	s.report(ctx, log, model.EnrichmentEvent{
		CourseID: course.ID,
		UserID:   course.UserID,
		Field:    field,
		Status:   model.EventFailed,
		Error:    cause.Error(),
	})
}

func (s *CourseService) report(ctx context.Context, log *zap.Logger, event model.EnrichmentEvent) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.Report(ctx, event); err != nil {
		log.Warn("report enrichment event failed", zap.String("field", event.Field), zap.Error(err))
	}
}
