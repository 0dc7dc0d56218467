package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"edutechai/pkg/domain"
)

// TestMongoStore runs the shared contract against a live server. Set
// EDUTECH_TEST_MONGODB_URL (for example mongodb://localhost:27017) to enable it.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("EDUTECH_TEST_MONGODB_URL")
	if uri == "" {
		t.Skip("EDUTECH_TEST_MONGODB_URL not set")
	}
	ctx := context.Background()
	name := fmt.Sprintf("edutech_test_%d", time.Now().UnixNano())
	s, err := NewMongoStore(ctx, uri, name)
	if err != nil {
		t.Fatalf("NewMongoStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.client.Database(name).Drop(context.Background()); err != nil {
			t.Logf("drop %s: %v", name, err)
		}
		_ = s.Close(context.Background())
	})
	runStoreContract(t, s)

	if _, ok, err := s.GetTextbook(ctx, "not-a-hex-id"); ok || err != nil {
		t.Fatalf("GetTextbook(bad hex) = %v, %v; want not found", ok, err)
	}
}

func roundTripConversation(t *testing.T, c domain.Conversation) (bson.Raw, domain.Conversation) {
	t.Helper()
	raw, err := bson.Marshal(conversationFields(c))
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}
	var doc conversationDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("bson.Unmarshal() error = %v", err)
	}
	return raw, conversationFromDoc(doc)
}

func TestConversationFieldsQuestionAnswer(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	raw, got := roundTripConversation(t, domain.Conversation{
		TextbookID: "tb1",
		Kind:       domain.KindQuestionAnswer,
		Question:   "why",
		Answer:     "because",
		CreatedAt:  at,
	})

	if v, err := raw.LookupErr("page_number"); err != nil || v.Type != bsontype.Null {
		t.Fatalf("page_number = %v (err %v), want explicit null", v, err)
	}
	if v, err := raw.LookupErr("user_id"); err != nil || v.Type != bsontype.Null {
		t.Fatalf("user_id = %v (err %v), want explicit null", v, err)
	}
	for _, key := range []string{"type", "chapter", "topic"} {
		if _, err := raw.LookupErr(key); err == nil {
			t.Fatalf("question/answer record carries %q", key)
		}
	}
	if got.Kind != domain.KindQuestionAnswer || got.PageNumber != nil || got.UserID != nil {
		t.Fatalf("conversationFromDoc() = %+v", got)
	}
	if got.Question != "why" || got.Answer != "because" || !got.CreatedAt.Equal(at) {
		t.Fatalf("conversationFromDoc() = %+v", got)
	}

	page := 12
	raw, got = roundTripConversation(t, domain.Conversation{TextbookID: "tb1", Question: "q", PageNumber: &page})
	if v := raw.Lookup("page_number"); v.Type != bsontype.Int64 && v.Type != bsontype.Int32 {
		t.Fatalf("page_number type = %v, want integer", v.Type)
	}
	if got.PageNumber == nil || *got.PageNumber != 12 {
		t.Fatalf("PageNumber = %v, want 12", got.PageNumber)
	}
}

func TestConversationFieldsLecture(t *testing.T) {
	raw, got := roundTripConversation(t, domain.Conversation{
		TextbookID:     "tb1",
		UserID:         strPtr("u1"),
		Kind:           domain.KindLecture,
		Topic:          "mitosis",
		LectureContent: "plan",
	})
	if v, err := raw.LookupErr("chapter"); err != nil || v.Type != bsontype.Null {
		t.Fatalf("chapter = %v (err %v), want explicit null", v, err)
	}
	if v := raw.Lookup("type").StringValue(); v != "lecture" {
		t.Fatalf("type = %q, want lecture", v)
	}
	if _, err := raw.LookupErr("page_number"); err == nil {
		t.Fatal("lecture record carries page_number")
	}
	if got.Kind != domain.KindLecture || got.Topic != "mitosis" || got.Chapter != nil || *got.UserID != "u1" {
		t.Fatalf("conversationFromDoc() = %+v", got)
	}
}

func TestConversationFromDocKinds(t *testing.T) {
	id := primitive.NewObjectID()
	tests := []struct {
		name string
		kind string
		want domain.ConversationKind
	}{
		{"untagged", "", domain.KindQuestionAnswer},
		{"lecture", "lecture", domain.KindLecture},
		{"unknown tag", "quiz", domain.KindQuestionAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conversationFromDoc(conversationDoc{ID: id, Kind: tt.kind})
			if got.Kind != tt.want {
				t.Fatalf("Kind = %q, want %q", got.Kind, tt.want)
			}
			if got.ID != id.Hex() {
				t.Fatalf("ID = %q, want %q", got.ID, id.Hex())
			}
		})
	}
}

func TestTextbookFromDoc(t *testing.T) {
	id := primitive.NewObjectID()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	got := textbookFromDoc(textbookDoc{
		ID:          id,
		Filename:    "bio.pdf",
		UploadedAt:  at,
		Content:     "text",
		PageCount:   3,
		PDFPath:     id.Hex() + ".pdf",
		UserID:      strPtr("u1"),
		IngestState: string(domain.IngestPathLinked),
	})
	if got.ID != id.Hex() || got.Filename != "bio.pdf" || !got.UploadedAt.Equal(at) || got.PageCount != 3 {
		t.Fatalf("textbookFromDoc() = %+v", got)
	}
	if got.PDFPath != id.Hex()+".pdf" || got.IngestState != domain.IngestPathLinked || *got.UserID != "u1" {
		t.Fatalf("textbookFromDoc() = %+v", got)
	}

	legacy := textbookFromDoc(textbookDoc{ID: id, Filename: "old.pdf"})
	if legacy.UserID != nil || legacy.PDFPath != "" || legacy.IngestState != "" {
		t.Fatalf("textbookFromDoc(legacy) = %+v", legacy)
	}
}
