package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

type mockPutter struct {
	mock.Mock
	body []byte
}

func (m *mockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if params.Body != nil {
		m.body, _ = io.ReadAll(params.Body)
	}
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

type staticSource struct {
	recipes     []model.Recipe
	ingredients []model.Ingredient
	err         error
}

func (s staticSource) ListRecipes(context.Context) ([]model.Recipe, error) { return s.recipes, s.err }

func (s staticSource) ListIngredients(context.Context) ([]model.Ingredient, error) {
	return s.ingredients, s.err
}

func newTestExporter(putter ObjectPutter, source CatalogSource) *Exporter {
	e := NewExporter(putter, "catalog-backups", "snapshots", source, nil)
	e.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }
	e.newID = func() string { return "snap-1" }
	return e
}

func TestExport(t *testing.T) {
	source := staticSource{
		recipes:     []model.Recipe{{ID: 1, Name: "Bread", Ingredients: []model.Ingredient{{ID: 1, Name: "flour"}}}},
		ingredients: []model.Ingredient{{ID: 1, Name: "flour", Quantity: 500, Unit: "g"}},
	}
	putter := new(mockPutter)
	putter.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "catalog-backups" &&
			aws.ToString(in.Key) == "snapshots/2024/03/09/snap-1.json" &&
			aws.ToString(in.ContentType) == "application/json"
	})).Return(&s3.PutObjectOutput{}, nil)

	result, err := newTestExporter(putter, source).Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &Result{
		ID:          "snap-1",
		Bucket:      "catalog-backups",
		Key:         "snapshots/2024/03/09/snap-1.json",
		Recipes:     1,
		Ingredients: 1,
	}, result)
	putter.AssertExpectations(t)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(putter.body, &snapshot))
	assert.Equal(t, "snap-1", snapshot.ID)
	require.Len(t, snapshot.Recipes, 1)
	assert.Equal(t, "Bread", snapshot.Recipes[0].Name)
}

func TestExportWithSigner(t *testing.T) {
	putter := new(mockPutter)
	putter.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)
	signer := new(mockSigner)
	signer.On("GeneratePresignedURL", mock.Anything, "snapshots/2024/03/09/snap-1.json", time.Hour).
		Return("https://example.test/snap-1.json", nil)

	result, err := newTestExporter(putter, staticSource{}).WithSigner(signer).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/snap-1.json", result.URL)
}

func TestExportUploadFailure(t *testing.T) {
	putter := new(mockPutter)
	putter.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := newTestExporter(putter, staticSource{}).Export(context.Background())
	assert.ErrorContains(t, err, "access denied")
}

func TestExportSourceFailure(t *testing.T) {
	putter := new(mockPutter)

	_, err := newTestExporter(putter, staticSource{err: errors.New("db down")}).Export(context.Background())
	assert.ErrorContains(t, err, "db down")
	putter.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}
