package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"edutechai/pkg/domain"
)

const (
	textbooksCollection     = "textbooks"
	conversationsCollection = "conversations"
	usersCollection         = "users"
)

type textbookDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Filename    string             `bson:"filename"`
	UploadedAt  time.Time          `bson:"uploaded_at"`
	Content     string             `bson:"content,omitempty"`
	PageCount   int                `bson:"page_count"`
	PDFPath     string             `bson:"pdf_path,omitempty"`
	UserID      *string            `bson:"user_id"`
	IngestState string             `bson:"ingest_state,omitempty"`
}

type conversationDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	TextbookID     string             `bson:"textbook_id"`
	UserID         *string            `bson:"user_id"`
	Kind           string             `bson:"type,omitempty"`
	Question       string             `bson:"question,omitempty"`
	Answer         string             `bson:"answer,omitempty"`
	PageNumber     *int               `bson:"page_number"`
	Topic          string             `bson:"topic,omitempty"`
	Chapter        *string            `bson:"chapter"`
	LectureContent string             `bson:"lecture_content,omitempty"`
	Timestamp      time.Time          `bson:"timestamp"`
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"created_at"`
}

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	client        *mongo.Client
	textbooks     *mongo.Collection
	conversations *mongo.Collection
	users         *mongo.Collection
}

// NewMongoStore connects, pings and ensures indexes.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabaseName
	}
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:        client,
		textbooks:     db.Collection(textbooksCollection),
		conversations: db.Collection(conversationsCollection),
		users:         db.Collection(usersCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}
	if _, err := s.conversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "textbook_id", Value: 1}, {Key: "timestamp", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create conversations index: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateTextbook(ctx context.Context, tb domain.Textbook) (string, error) {
	doc := textbookDoc{
		Filename:    tb.Filename,
		UploadedAt:  tb.UploadedAt,
		Content:     tb.Content,
		PageCount:   tb.PageCount,
		PDFPath:     tb.PDFPath,
		UserID:      tb.UserID,
		IngestState: string(tb.IngestState),
	}
	res, err := s.textbooks.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoStore) LinkTextbookFile(ctx context.Context, id, path string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("link textbook %s: %w", id, ErrNotFound)
	}
	res, err := s.textbooks.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"pdf_path":     path,
		"ingest_state": string(domain.IngestPathLinked),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("link textbook %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTextbook treats ids that are not valid ObjectIDs as absent.
func (s *MongoStore) GetTextbook(ctx context.Context, id string) (domain.Textbook, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Textbook{}, false, nil
	}
	var doc textbookDoc
	if err := s.textbooks.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return domain.Textbook{}, false, nil
		}
		return domain.Textbook{}, false, err
	}
	return textbookFromDoc(doc), true, nil
}

func (s *MongoStore) ListTextbooks(ctx context.Context, ownerID string) ([]domain.Textbook, error) {
	filter := bson.M{}
	if ownerID != "" {
		filter["user_id"] = ownerID
	}
	opts := options.Find().
		SetProjection(bson.M{"content": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.textbooks.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []textbookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	res := make([]domain.Textbook, 0, len(docs))
	for _, d := range docs {
		res = append(res, textbookFromDoc(d))
	}
	return res, nil
}

func (s *MongoStore) DeleteTextbook(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := s.textbooks.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) CreateConversation(ctx context.Context, c domain.Conversation) (string, error) {
	res, err := s.conversations.InsertOne(ctx, conversationFields(c))
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// conversationFields lays out a conversation the way readers of the
// collection expect. Question/answer records carry no type field and always
// store page_number, null when no page was cited. Lectures are tagged and
// always store chapter, null when none was requested.
func conversationFields(c domain.Conversation) bson.D {
	fields := bson.D{
		{Key: "textbook_id", Value: c.TextbookID},
		{Key: "user_id", Value: c.UserID},
	}
	if c.Kind == domain.KindLecture {
		fields = append(fields,
			bson.E{Key: "type", Value: string(domain.KindLecture)},
			bson.E{Key: "topic", Value: c.Topic},
			bson.E{Key: "chapter", Value: c.Chapter},
			bson.E{Key: "lecture_content", Value: c.LectureContent},
		)
	} else {
		fields = append(fields,
			bson.E{Key: "question", Value: c.Question},
			bson.E{Key: "answer", Value: c.Answer},
			bson.E{Key: "page_number", Value: c.PageNumber},
		)
	}
	return append(fields, bson.E{Key: "timestamp", Value: c.CreatedAt})
}

func (s *MongoStore) ListConversations(ctx context.Context, textbookID, userID string, limit int) ([]domain.Conversation, error) {
	filter := bson.M{"textbook_id": textbookID}
	if userID != "" {
		filter["user_id"] = userID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit)))
	cur, err := s.conversations.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []conversationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	res := make([]domain.Conversation, 0, len(docs))
	for _, d := range docs {
		res = append(res, conversationFromDoc(d))
	}
	return res, nil
}

func (s *MongoStore) DeleteConversationsByTextbook(ctx context.Context, textbookID string) (int64, error) {
	res, err := s.conversations.DeleteMany(ctx, bson.M{"textbook_id": textbookID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u domain.User) (string, error) {
	res, err := s.users.InsertOne(ctx, userDoc{
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicate
		}
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return domain.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.Password,
		CreatedAt:    doc.CreatedAt,
	}, true, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func textbookFromDoc(d textbookDoc) domain.Textbook {
	return domain.Textbook{
		ID:          d.ID.Hex(),
		Filename:    d.Filename,
		UploadedAt:  d.UploadedAt,
		Content:     d.Content,
		PageCount:   d.PageCount,
		PDFPath:     d.PDFPath,
		UserID:      d.UserID,
		IngestState: domain.IngestState(d.IngestState),
	}
}

func conversationFromDoc(d conversationDoc) domain.Conversation {
	kind := domain.KindQuestionAnswer
	if d.Kind == string(domain.KindLecture) {
		kind = domain.KindLecture
	}
	return domain.Conversation{
		ID:             d.ID.Hex(),
		TextbookID:     d.TextbookID,
		UserID:         d.UserID,
		Kind:           kind,
		Question:       d.Question,
		Answer:         d.Answer,
		PageNumber:     d.PageNumber,
		Topic:          d.Topic,
		Chapter:        d.Chapter,
		LectureContent: d.LectureContent,
		CreatedAt:      d.Timestamp,
	}
}
