package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"edutechai/pkg/domain"
)

func strPtr(s string) *string { return &s }

// runStoreContract exercises behaviour every Store adapter must share.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("textbook lifecycle", func(t *testing.T) {
		id, err := s.CreateTextbook(ctx, domain.Textbook{
			Filename:    "bio.pdf",
			UploadedAt:  base,
			Content:     "\n--- Page 1 ---\ncells",
			PageCount:   1,
			UserID:      strPtr("u1"),
			IngestState: domain.IngestCreated,
		})
		if err != nil || id == "" {
			t.Fatalf("CreateTextbook() = %q, %v", id, err)
		}
		if err := s.LinkTextbookFile(ctx, id, id+".pdf"); err != nil {
			t.Fatalf("LinkTextbookFile() error = %v", err)
		}
		got, ok, err := s.GetTextbook(ctx, id)
		if err != nil || !ok {
			t.Fatalf("GetTextbook() = %v, %v", ok, err)
		}
		if got.PDFPath != id+".pdf" || got.IngestState != domain.IngestPathLinked {
			t.Fatalf("GetTextbook() path/state = %q/%q", got.PDFPath, got.IngestState)
		}
		if got.Content == "" || got.PageCount != 1 || got.UserID == nil || *got.UserID != "u1" {
			t.Fatalf("GetTextbook() = %+v", got)
		}

		other, err := s.CreateTextbook(ctx, domain.Textbook{Filename: "chem.pdf", UploadedAt: base.Add(time.Minute), IngestState: domain.IngestCreated})
		if err != nil {
			t.Fatalf("CreateTextbook(other) error = %v", err)
		}

		all, err := s.ListTextbooks(ctx, "")
		if err != nil || len(all) != 2 {
			t.Fatalf("ListTextbooks(all) = %d, %v; want 2", len(all), err)
		}
		if all[0].ID != id || all[1].ID != other {
			t.Fatalf("ListTextbooks() order = %s,%s", all[0].ID, all[1].ID)
		}
		for _, tb := range all {
			if tb.Content != "" {
				t.Fatalf("ListTextbooks() returned content for %s", tb.ID)
			}
		}
		mine, err := s.ListTextbooks(ctx, "u1")
		if err != nil || len(mine) != 1 || mine[0].ID != id {
			t.Fatalf("ListTextbooks(u1) = %+v, %v", mine, err)
		}

		found, err := s.DeleteTextbook(ctx, other)
		if err != nil || !found {
			t.Fatalf("DeleteTextbook() = %v, %v", found, err)
		}
		if _, ok, _ := s.GetTextbook(ctx, other); ok {
			t.Fatal("textbook still present after delete")
		}
		if found, _ := s.DeleteTextbook(ctx, other); found {
			t.Fatal("second delete reported found")
		}
	})

	t.Run("missing textbook", func(t *testing.T) {
		if _, ok, err := s.GetTextbook(ctx, "000000000000000000000000"); ok || err != nil {
			t.Fatalf("GetTextbook(missing) = %v, %v", ok, err)
		}
		if err := s.LinkTextbookFile(ctx, "000000000000000000000000", "x.pdf"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("LinkTextbookFile(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("conversations newest first", func(t *testing.T) {
		for i, q := range []string{"q1", "q2", "q3"} {
			_, err := s.CreateConversation(ctx, domain.Conversation{
				TextbookID: "tb-conv",
				UserID:     strPtr("u1"),
				Kind:       domain.KindQuestionAnswer,
				Question:   q,
				Answer:     "a",
				CreatedAt:  base.Add(time.Duration(i) * time.Second),
			})
			if err != nil {
				t.Fatalf("CreateConversation(%s) error = %v", q, err)
			}
		}
		page := 4
		if _, err := s.CreateConversation(ctx, domain.Conversation{
			TextbookID: "tb-conv", UserID: strPtr("u2"), Kind: domain.KindLecture,
			Topic: "mitosis", LectureContent: "plan", PageNumber: &page, CreatedAt: base.Add(time.Hour),
		}); err != nil {
			t.Fatalf("CreateConversation(lecture) error = %v", err)
		}

		got, err := s.ListConversations(ctx, "tb-conv", "u1", 50)
		if err != nil || len(got) != 3 {
			t.Fatalf("ListConversations(u1) = %d, %v; want 3", len(got), err)
		}
		if got[0].Question != "q3" || got[1].Question != "q2" || got[2].Question != "q1" {
			t.Fatalf("ListConversations() order = %s,%s,%s", got[0].Question, got[1].Question, got[2].Question)
		}

		all, _ := s.ListConversations(ctx, "tb-conv", "", 2)
		if len(all) != 2 || all[0].Kind != domain.KindLecture || all[0].Topic != "mitosis" {
			t.Fatalf("ListConversations(limit 2) = %+v", all)
		}

		n, err := s.DeleteConversationsByTextbook(ctx, "tb-conv")
		if err != nil || n != 4 {
			t.Fatalf("DeleteConversationsByTextbook() = %d, %v; want 4", n, err)
		}
		left, _ := s.ListConversations(ctx, "tb-conv", "", 50)
		if len(left) != 0 {
			t.Fatalf("conversations left after delete = %d", len(left))
		}
	})

	t.Run("users unique email", func(t *testing.T) {
		id, err := s.CreateUser(ctx, domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h", CreatedAt: base})
		if err != nil || id == "" {
			t.Fatalf("CreateUser() = %q, %v", id, err)
		}
		if _, err := s.CreateUser(ctx, domain.User{Name: "Other", Email: "ada@example.com", PasswordHash: "h2"}); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("CreateUser(duplicate) error = %v, want ErrDuplicate", err)
		}
		u, ok, err := s.GetUserByEmail(ctx, "ada@example.com")
		if err != nil || !ok || u.ID != id || u.Name != "Ada" || u.PasswordHash != "h" {
			t.Fatalf("GetUserByEmail() = %+v, %v, %v", u, ok, err)
		}
		if _, ok, _ := s.GetUserByEmail(ctx, "ADA@example.com"); ok {
			t.Fatal("email lookup should be case-sensitive")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreConversationTiesKeepInsertOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, q := range []string{"first", "second"} {
		if _, err := s.CreateConversation(ctx, domain.Conversation{TextbookID: "t", Question: q, CreatedAt: at}); err != nil {
			t.Fatalf("CreateConversation() error = %v", err)
		}
	}
	got, _ := s.ListConversations(ctx, "t", "", 0)
	if len(got) != 2 || got[0].Question != "second" {
		t.Fatalf("ListConversations() = %+v", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "memory://", Options{})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("Open(memory) = %T, want *MemoryStore", s)
	}
	if _, err := Open(ctx, "", Options{}); err == nil {
		t.Fatal("Open(empty) should fail")
	}
	if _, err := Open(ctx, "redis://localhost", Options{}); err == nil {
		t.Fatal("Open(redis) should fail")
	}
}

func TestOpenOrUnavailable(t *testing.T) {
	ctx := context.Background()
	s := OpenOrUnavailable(ctx, "", Options{})
	if _, ok := s.(Unavailable); !ok {
		t.Fatalf("OpenOrUnavailable(empty) = %T, want Unavailable", s)
	}
	if _, err := s.CreateTextbook(ctx, domain.Textbook{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("CreateTextbook() error = %v, want ErrUnavailable", err)
	}
	if _, _, err := s.GetTextbook(ctx, "x"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("GetTextbook() error = %v, want ErrUnavailable", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Ping() error = %v, want ErrUnavailable", err)
	}
}
