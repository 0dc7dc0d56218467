package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"edutechai/internal/util"
	"edutechai/pkg/domain"
	"edutechai/pkg/extract"
	"edutechai/pkg/prompt"
	"edutechai/pkg/storage"
)

// IngestTextbook extracts text from a PDF upload, records the textbook and
// stores the original bytes. Each step depends on the one before. When the
// binary write or path update fails the record stays behind in an earlier
// ingest state; IngestStatus reports where it stopped.
func (a *App) IngestTextbook(ctx context.Context, filename string, data []byte, userID string) (domain.Textbook, error) {
	logger := util.LoggerFromContext(ctx)
	if !strings.HasSuffix(filename, ".pdf") {
		return domain.Textbook{}, ErrNotPDF
	}

	doc, err := extract.PDF(data)
	if err != nil {
		return domain.Textbook{}, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	tb := domain.Textbook{
		Filename:    filename,
		UploadedAt:  a.now(),
		Content:     doc.Text,
		PageCount:   doc.PageCount,
		UserID:      optional(userID),
		IngestState: domain.IngestCreated,
	}
	id, err := a.store.CreateTextbook(ctx, tb)
	if err != nil {
		return domain.Textbook{}, upstream("save textbook", err)
	}
	tb.ID = id

	key := FileKey(id)
	if err := a.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		logger.Error("textbook ingest incomplete", "textbook_id", id, "state", tb.IngestState, "err", err)
		return domain.Textbook{}, upstream("store pdf", err)
	}
	tb.IngestState = domain.IngestFileWritten

	if err := a.store.LinkTextbookFile(ctx, id, key); err != nil {
		logger.Error("textbook ingest incomplete", "textbook_id", id, "state", tb.IngestState, "err", err)
		return domain.Textbook{}, upstream("link pdf", err)
	}
	tb.PDFPath = key
	tb.IngestState = domain.IngestPathLinked

	logger.Info("textbook ingested", "textbook_id", id, "filename", filename, "pages", doc.PageCount, "chars", prompt.CharCount(doc.Text))
	return tb, nil
}

// ListTextbooks returns textbook metadata, optionally for one owner.
func (a *App) ListTextbooks(ctx context.Context, userID string) ([]domain.Textbook, error) {
	books, err := a.store.ListTextbooks(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, upstream("list textbooks", err)
	}
	if books == nil {
		books = []domain.Textbook{}
	}
	return books, nil
}

// GetTextbook returns one textbook including its content.
func (a *App) GetTextbook(ctx context.Context, id string) (domain.Textbook, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Textbook{}, invalid("textbook_id is required")
	}
	tb, ok, err := a.store.GetTextbook(ctx, id)
	if err != nil {
		return domain.Textbook{}, upstream("load textbook", err)
	}
	if !ok {
		return domain.Textbook{}, ErrTextbookNotFound
	}
	return tb, nil
}

// DeleteTextbook removes the binary, the record and its conversations.
// Binary and conversation cleanup failures are logged and do not fail the
// call.
func (a *App) DeleteTextbook(ctx context.Context, id string) error {
	logger := util.LoggerFromContext(ctx)
	tb, err := a.GetTextbook(ctx, id)
	if err != nil {
		return err
	}

	if err := a.objects.Delete(ctx, objectKey(tb.PDFPath, id)); err != nil {
		logger.Warn("could not delete pdf file", "textbook_id", id, "err", err)
	}
	found, err := a.store.DeleteTextbook(ctx, id)
	if err != nil {
		return upstream("delete textbook", err)
	}
	if !found {
		return ErrTextbookNotFound
	}
	if n, err := a.store.DeleteConversationsByTextbook(ctx, id); err != nil {
		logger.Warn("could not delete conversations", "textbook_id", id, "err", err)
	} else {
		logger.Info("textbook deleted", "textbook_id", id, "conversations", n)
	}
	return nil
}

// TextbookFile returns the original PDF bytes. A record without a linked
// path falls back to FileKey(id), so a file_written ingest still serves its
// binary. A textbook whose binary is missing reports ErrFileNotFound while its
// metadata stays readable.
func (a *App) TextbookFile(ctx context.Context, id string) (domain.Textbook, []byte, error) {
	tb, err := a.GetTextbook(ctx, id)
	if err != nil {
		return domain.Textbook{}, nil, err
	}
	data, err := a.objects.Get(ctx, objectKey(tb.PDFPath, id))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return tb, nil, ErrFileNotFound
	}
	if err != nil {
		return tb, nil, upstream("read pdf", err)
	}
	return tb, data, nil
}

// IngestStatus reports how far ingestion of a textbook got. A record still
// marked created whose binary exists is reported as file_written.
func (a *App) IngestStatus(ctx context.Context, id string) (domain.IngestState, error) {
	tb, err := a.GetTextbook(ctx, id)
	if err != nil {
		return "", err
	}
	switch {
	case tb.IngestState == domain.IngestPathLinked, tb.IngestState == "" && tb.PDFPath != "":
		return domain.IngestPathLinked, nil
	}
	ok, err := a.objects.Exists(ctx, FileKey(id))
	if err != nil {
		return "", upstream("stat pdf", err)
	}
	if ok {
		return domain.IngestFileWritten, nil
	}
	return domain.IngestCreated, nil
}
