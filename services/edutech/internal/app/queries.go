package app

import (
	"context"
	"strings"

	"edutechai/internal/util"
	"edutechai/pkg/domain"
	"edutechai/pkg/prompt"
)

// AskQuestion answers a question from the textbook's content, records the
// exchange and returns any page the answer cites.
func (a *App) AskQuestion(ctx context.Context, textbookID, question, userID string) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, invalid("question is required")
	}
	tb, err := a.GetTextbook(ctx, textbookID)
	if err != nil {
		return domain.Answer{}, err
	}

	answer, err := a.generate(ctx, prompt.Question(tb.Content, question))
	if err != nil {
		return domain.Answer{}, err
	}
	var page *int
	if n, ok := prompt.PageReference(answer); ok {
		page = &n
	}

	if _, err := a.store.CreateConversation(ctx, domain.Conversation{
		TextbookID: textbookID,
		UserID:     optional(userID),
		Kind:       domain.KindQuestionAnswer,
		Question:   question,
		Answer:     answer,
		PageNumber: page,
		CreatedAt:  a.now(),
	}); err != nil {
		return domain.Answer{}, upstream("save conversation", err)
	}
	return domain.Answer{Answer: answer, TextbookID: textbookID, PageNumber: page}, nil
}

// ExplainAnswer rewrites an earlier answer in simpler words. Nothing is
// persisted.
func (a *App) ExplainAnswer(ctx context.Context, textbookID, question, answer string) (domain.Explanation, error) {
	if strings.TrimSpace(answer) == "" {
		return domain.Explanation{}, invalid("answer is required")
	}
	tb, err := a.GetTextbook(ctx, textbookID)
	if err != nil {
		return domain.Explanation{}, err
	}
	explanation, err := a.generate(ctx, prompt.Explanation(tb.Content, question, answer))
	if err != nil {
		return domain.Explanation{}, err
	}
	return domain.Explanation{Explanation: explanation, OriginalAnswer: answer}, nil
}

// GenerateLecture produces a lecture plan for a topic and records it.
func (a *App) GenerateLecture(ctx context.Context, textbookID, topic, chapter, userID string) (domain.Lecture, error) {
	if strings.TrimSpace(topic) == "" {
		return domain.Lecture{}, invalid("topic is required")
	}
	tb, err := a.GetTextbook(ctx, textbookID)
	if err != nil {
		return domain.Lecture{}, err
	}
	ch := optional(chapter)
	var chapterText string
	if ch != nil {
		chapterText = *ch
	}

	content, err := a.generate(ctx, prompt.Lecture(tb.Content, topic, chapterText))
	if err != nil {
		return domain.Lecture{}, err
	}
	if _, err := a.store.CreateConversation(ctx, domain.Conversation{
		TextbookID:     textbookID,
		UserID:         optional(userID),
		Kind:           domain.KindLecture,
		Topic:          topic,
		Chapter:        ch,
		LectureContent: content,
		CreatedAt:      a.now(),
	}); err != nil {
		return domain.Lecture{}, upstream("save lecture", err)
	}
	util.LoggerFromContext(ctx).Info("lecture generated", "textbook_id", textbookID, "topic", topic, "chars", prompt.CharCount(content))
	return domain.Lecture{LectureContent: content, Topic: topic, Chapter: ch, TextbookID: textbookID}, nil
}

// ListConversations returns the latest HistoryLimit conversations for a
// textbook, newest first. An unknown textbook yields an empty list.
func (a *App) ListConversations(ctx context.Context, textbookID, userID string) ([]domain.Conversation, error) {
	if strings.TrimSpace(textbookID) == "" {
		return nil, invalid("textbook_id is required")
	}
	convs, err := a.store.ListConversations(ctx, textbookID, strings.TrimSpace(userID), HistoryLimit)
	if err != nil {
		return nil, upstream("list conversations", err)
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return convs, nil
}
