package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel values stored in Course.QnA and Course.Flashcards while the
// background stage has not produced a result.
const (
	EnrichmentPending = "loading"
	EnrichmentFailed  = "failed"
)

// Course is the persisted record. Content is written once at creation.
// QnA and Flashcards start at EnrichmentPending and are each overwritten
// exactly once by the background stage, independently of each other.
type Course struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Title      string    `gorm:"size:256" json:"title"`
	Content    string    `gorm:"type:longtext;not null" json:"content"`
	QnA        string    `gorm:"column:qna;type:longtext;not null" json:"qna"`
	Flashcards string    `gorm:"type:longtext;not null" json:"flashcards"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CourseSummary is the listing projection of a Course.
type CourseSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CourseContent is the structured course derived from an uploaded file.
type CourseContent struct {
	CourseTitle   string    `json:"courseTitle"`
	CourseSummary string    `json:"courseSummary"`
	Chapters      []Chapter `json:"chapters"`
}

type Chapter struct {
	ChapterTitle   string   `json:"chapterTitle"`
	ChapterSummary string   `json:"chapterSummary"`
	ChapterIcon    string   `json:"chapterIcon"`
	Topics         []string `json:"topics"`
}
