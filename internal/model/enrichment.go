package model

import "time"

type QnASet struct {
	Items []QnAItem `json:"qna"`
}

type QnAItem struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
	Chapter    string `json:"chapter"`
	Type       string `json:"type"`
}

type FlashcardSet struct {
	Flashcards []Flashcard `json:"flashcards"`
}

type Flashcard struct {
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
}

// Enrichment fields, also the column names they are written to.
const (
	FieldQnA        = "qna"
	FieldFlashcards = "flashcards"
)

const (
	EventSucceeded = "succeeded"
	EventFailed    = "failed"
)

// EnrichmentEvent records the terminal outcome of one background derivation.
type EnrichmentEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  string    `gorm:"type:char(36);not null;index" json:"course_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Field     string    `gorm:"size:16;not null" json:"field"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
