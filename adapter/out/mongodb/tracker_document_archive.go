package mongodb

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"tracker_server/core/domain"
	"tracker_server/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionDocuments = "generated_documents"

	// Content above this size is stored gzip-compressed.
	documentCompressionThreshold = 1024
)

// DocumentArchive implements out.DocumentArchive.
type DocumentArchive struct {
	collection *mongo.Collection
}

func NewDocumentArchive(db *mongo.Database) *DocumentArchive {
	return &DocumentArchive{collection: db.Collection(collectionDocuments)}
}

// EnsureIndexes creates the lookup indexes.
func (a *DocumentArchive) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "email", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

type documentRecord struct {
	ID             string    `bson:"id"`
	Email          string    `bson:"email"`
	Kind           string    `bson:"kind"`
	Company        string    `bson:"company,omitempty"`
	JobDescription string    `bson:"job_description"`
	Content        []byte    `bson:"content"`
	IsCompressed   bool      `bson:"is_compressed"`
	Model          string    `bson:"model"`
	CreatedAt      time.Time `bson:"created_at"`
}

func (a *DocumentArchive) Save(ctx context.Context, doc *domain.GeneratedDocument) error {
	rec, err := toRecord(doc)
	if err != nil {
		return err
	}
	if _, err := a.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// ListByEmail returns the newest documents first.
func (a *DocumentArchive) ListByEmail(ctx context.Context, email string, limit int) ([]domain.GeneratedDocument, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, bson.M{"email": email}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := make([]domain.GeneratedDocument, 0, limit)
	for cursor.Next(ctx) {
		var rec documentRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		doc, err := fromRecord(&rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func toRecord(doc *domain.GeneratedDocument) (*documentRecord, error) {
	content := []byte(doc.Content)
	compressed := false
	if len(content) > documentCompressionThreshold {
		var err error
		if content, err = gzipContent(content); err != nil {
			return nil, fmt.Errorf("failed to compress content: %w", err)
		}
		compressed = true
	}

	return &documentRecord{
		ID:             doc.ID,
		Email:          doc.Email,
		Kind:           string(doc.Kind),
		Company:        doc.Company,
		JobDescription: doc.JobDescription,
		Content:        content,
		IsCompressed:   compressed,
		Model:          doc.Model,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

func fromRecord(rec *documentRecord) (*domain.GeneratedDocument, error) {
	content := rec.Content
	if rec.IsCompressed {
		var err error
		if content, err = gunzipContent(content); err != nil {
			return nil, fmt.Errorf("failed to decompress document %s: %w", rec.ID, err)
		}
	}

	return &domain.GeneratedDocument{
		ID:             rec.ID,
		Email:          rec.Email,
		Kind:           domain.DocumentKind(rec.Kind),
		Company:        rec.Company,
		JobDescription: rec.JobDescription,
		Content:        string(content),
		Model:          rec.Model,
		CreatedAt:      rec.CreatedAt,
	}, nil
}

func gzipContent(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipContent(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

var _ out.DocumentArchive = (*DocumentArchive)(nil)
