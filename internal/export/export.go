// Package export writes catalog snapshots to S3 compatible object storage
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// ObjectPutter is the subset of the S3 client used for uploads
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// URLSigner issues time limited download links
type URLSigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// CatalogSource provides the data to export
type CatalogSource interface {
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	ListIngredients(ctx context.Context) ([]model.Ingredient, error)
}

// Snapshot is the document written for each export
type Snapshot struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"createdAt"`
	Recipes     []model.Recipe     `json:"recipes"`
	Ingredients []model.Ingredient `json:"ingredients"`
}

// Result describes a finished export
type Result struct {
	ID          string `json:"id"`
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Recipes     int    `json:"recipes"`
	Ingredients int    `json:"ingredients"`
	URL         string `json:"url,omitempty"`
}

// Exporter uploads JSON snapshots of the catalog
type Exporter struct {
	client ObjectPutter
	signer URLSigner
	bucket string
	prefix string
	source CatalogSource
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewExporter creates a new Exporter instance
func NewExporter(client ObjectPutter, bucket, prefix string, source CatalogSource, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		client: client,
		bucket: bucket,
		prefix: prefix,
		source: source,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// WithSigner makes Export return a presigned download URL valid for one hour
func (e *Exporter) WithSigner(signer URLSigner) *Exporter {
	e.signer = signer
	return e
}

// Export reads the catalog and uploads it as one JSON object
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	recipes, err := e.source.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}
	ingredients, err := e.source.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ingredients: %w", err)
	}

	snapshot := Snapshot{
		ID:          e.newID(),
		CreatedAt:   e.now().UTC(),
		Recipes:     recipes,
		Ingredients: ingredients,
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := e.Key(snapshot)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot: %w", err)
	}

	result := &Result{
		ID:          snapshot.ID,
		Bucket:      e.bucket,
		Key:         key,
		Recipes:     len(recipes),
		Ingredients: len(ingredients),
	}
	if e.signer != nil {
		url, err := e.signer.GeneratePresignedURL(ctx, key, time.Hour)
		if err != nil {
			e.logger.Warn("failed to presign snapshot url", zap.String("key", key), zap.Error(err))
		} else {
			result.URL = url
		}
	}

	e.logger.Info("catalog snapshot exported",
		zap.String("snapshot_id", snapshot.ID),
		zap.String("key", key),
		zap.Int("recipes", result.Recipes),
		zap.Int("ingredients", result.Ingredients))
	return result, nil
}

// Key returns the object key of a snapshot: <prefix>/YYYY/MM/DD/<id>.json
func (e *Exporter) Key(s Snapshot) string {
	return path.Join(e.prefix, s.CreatedAt.Format("2006/01/02"), s.ID+".json")
}
