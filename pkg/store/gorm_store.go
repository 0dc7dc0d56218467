package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"edutechai/pkg/domain"
)

// textbookListColumns leaves out content, which can be large.
var textbookListColumns = []string{"id", "filename", "uploaded_at", "page_count", "pdf_path", "user_id", "ingest_state"}

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&TextbookModel{}, &ConversationModel{}, &UserModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// CreateTextbook inserts a textbook and returns its generated id.
func (s *GormStore) CreateTextbook(ctx context.Context, tb domain.Textbook) (string, error) {
	tb.ID = uuid.NewString()
	model := textbookToModel(tb)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

// LinkTextbookFile records where the binary was written.
func (s *GormStore) LinkTextbookFile(ctx context.Context, id, path string) error {
	res := s.db.WithContext(ctx).Model(&TextbookModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"pdf_path":     path,
			"ingest_state": string(domain.IngestPathLinked),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("link textbook %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTextbook retrieves a textbook including its content.
func (s *GormStore) GetTextbook(ctx context.Context, id string) (domain.Textbook, bool, error) {
	var model TextbookModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Textbook{}, false, nil
		}
		return domain.Textbook{}, false, err
	}
	return textbookFromModel(model), true, nil
}

// ListTextbooks returns textbooks in upload order, optionally for one owner.
func (s *GormStore) ListTextbooks(ctx context.Context, ownerID string) ([]domain.Textbook, error) {
	var models []TextbookModel
	tx := s.db.WithContext(ctx).Select(textbookListColumns).Order("uploaded_at ASC")
	if ownerID != "" {
		tx = tx.Where("user_id = ?", ownerID)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Textbook, 0, len(models))
	for _, m := range models {
		res = append(res, textbookFromModel(m))
	}
	return res, nil
}

// DeleteTextbook removes the textbook row only. Conversations are removed
// separately so a failure there does not undo the delete.
func (s *GormStore) DeleteTextbook(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&TextbookModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) CreateConversation(ctx context.Context, c domain.Conversation) (string, error) {
	c.ID = uuid.NewString()
	model := conversationToModel(c)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

// ListConversations returns the newest conversations first.
func (s *GormStore) ListConversations(ctx context.Context, textbookID, userID string, limit int) ([]domain.Conversation, error) {
	var models []ConversationModel
	tx := s.db.WithContext(ctx).Where("textbook_id = ?", textbookID)
	if userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}
	if err := tx.Order("created_at DESC").Limit(normalizeLimit(limit)).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Conversation, 0, len(models))
	for _, m := range models {
		res = append(res, conversationFromModel(m))
	}
	return res, nil
}

func (s *GormStore) DeleteConversationsByTextbook(ctx context.Context, textbookID string) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&ConversationModel{}, "textbook_id = ?", textbookID)
	return res.RowsAffected, res.Error
}

// CreateUser inserts a user; a reused email yields ErrDuplicate.
func (s *GormStore) CreateUser(ctx context.Context, u domain.User) (string, error) {
	u.ID = uuid.NewString()
	model := userToModel(u)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrDuplicate
		}
		return "", err
	}
	return model.ID, nil
}

// GetUserByEmail looks up a user by exact email.
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func textbookToModel(tb domain.Textbook) TextbookModel {
	return TextbookModel{
		ID:          tb.ID,
		Filename:    tb.Filename,
		UploadedAt:  tb.UploadedAt,
		Content:     tb.Content,
		PageCount:   tb.PageCount,
		PDFPath:     tb.PDFPath,
		UserID:      tb.UserID,
		IngestState: string(tb.IngestState),
	}
}

func textbookFromModel(m TextbookModel) domain.Textbook {
	return domain.Textbook{
		ID:          m.ID,
		Filename:    m.Filename,
		UploadedAt:  m.UploadedAt,
		Content:     m.Content,
		PageCount:   m.PageCount,
		PDFPath:     m.PDFPath,
		UserID:      m.UserID,
		IngestState: domain.IngestState(m.IngestState),
	}
}

func conversationToModel(c domain.Conversation) ConversationModel {
	return ConversationModel{
		ID:             c.ID,
		TextbookID:     c.TextbookID,
		UserID:         c.UserID,
		Kind:           string(c.Kind),
		Question:       c.Question,
		Answer:         c.Answer,
		PageNumber:     c.PageNumber,
		Topic:          c.Topic,
		Chapter:        c.Chapter,
		LectureContent: c.LectureContent,
		CreatedAt:      c.CreatedAt,
	}
}

func conversationFromModel(m ConversationModel) domain.Conversation {
	return domain.Conversation{
		ID:             m.ID,
		TextbookID:     m.TextbookID,
		UserID:         m.UserID,
		Kind:           domain.ConversationKind(m.Kind),
		Question:       m.Question,
		Answer:         m.Answer,
		PageNumber:     m.PageNumber,
		Topic:          m.Topic,
		Chapter:        m.Chapter,
		LectureContent: m.LectureContent,
		CreatedAt:      m.CreatedAt,
	}
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}
