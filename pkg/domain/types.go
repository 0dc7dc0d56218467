package domain

import "time"

// IngestState tracks how far a textbook upload got.
type IngestState string

const (
	IngestCreated     IngestState = "created"
	IngestFileWritten IngestState = "file_written"
	IngestPathLinked  IngestState = "path_linked"
)

type ConversationKind string

const (
	KindQuestionAnswer ConversationKind = "question_answer"
	KindLecture        ConversationKind = "lecture"
)

type Textbook struct {
	ID          string      `json:"_id"`
	Filename    string      `json:"filename"`
	UploadedAt  time.Time   `json:"uploaded_at"`
	Content     string      `json:"-"`
	PageCount   int         `json:"page_count"`
	PDFPath     string      `json:"pdf_path,omitempty"`
	UserID      *string     `json:"user_id"`
	IngestState IngestState `json:"ingest_state,omitempty"`
}

// Conversation is one persisted exchange: either a question/answer pair or a
// generated lecture plan.
type Conversation struct {
	ID             string           `json:"_id"`
	TextbookID     string           `json:"textbook_id"`
	UserID         *string          `json:"user_id"`
	Kind           ConversationKind `json:"type"`
	Question       string           `json:"question,omitempty"`
	Answer         string           `json:"answer,omitempty"`
	PageNumber     *int             `json:"page_number"`
	Topic          string           `json:"topic,omitempty"`
	Chapter        *string          `json:"chapter,omitempty"`
	LectureContent string           `json:"lecture_content,omitempty"`
	CreatedAt      time.Time        `json:"timestamp"`
}

type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Answer is the result of asking a question about a textbook.
type Answer struct {
	Answer     string `json:"answer"`
	TextbookID string `json:"textbook_id"`
	PageNumber *int   `json:"page_number"`
}

type Explanation struct {
	Explanation    string `json:"explanation"`
	OriginalAnswer string `json:"original_answer"`
}

type Lecture struct {
	LectureContent string  `json:"lecture_content"`
	Topic          string  `json:"topic"`
	Chapter        *string `json:"chapter"`
	TextbookID     string  `json:"textbook_id"`
}
