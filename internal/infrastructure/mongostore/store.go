package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

// errDatabase is what callers see of a driver failure. The driver error names
// hosts and is only logged.
var errDatabase = errors.New("database error: database unavailable")

// Config holds the document store settings
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Store is a product store backed by a MongoDB collection keyed by url
type Store struct {
	client   *mongo.Client
	products *mongo.Collection
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewStore connects, pings and ensures the unique url index
func NewStore(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.Collection == "" {
		cfg.Collection = "products"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	s := &Store{
		client:   client,
		products: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:  cfg.Timeout,
		logger:   logger.With().Str("component", "mongostore").Logger(),
	}

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.products.Indexes().CreateOne(connectCtx, index); err != nil {
		s.logger.Warn().Err(err).Msg("failed to create url index")
	}

	return s, nil
}

// Get returns the product stored under url, or domain.ErrProductNotFound
func (s *Store) Get(ctx context.Context, url string) (*domain.ProductRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var record domain.ProductRecord
	err := s.products.FindOne(ctx, bson.M{"url": url}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("op", "get product").Msg("query failed")
		return nil, errDatabase
	}
	return &record, nil
}

// Insert stores a new product document
func (s *Store) Insert(ctx context.Context, record *domain.ProductRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.products.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("database error: product %s already exists", record.URL)
		}
		s.logger.Error().Err(err).Str("op", "insert product").Msg("query failed")
		return errDatabase
	}
	return nil
}

// Patch applies a partial update to the product stored under url
func (s *Store) Patch(ctx context.Context, url string, patch domain.ProductPatch) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.products.UpdateOne(ctx, bson.M{"url": url}, patchUpdate(patch))
	if err != nil {
		s.logger.Error().Err(err).Str("op", "patch product").Msg("query failed")
		return errDatabase
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Close disconnects from the server
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// patchUpdate builds the $set document for a patch. Composition fields are
// only set when the patch carries them.
func patchUpdate(patch domain.ProductPatch) bson.M {
	set := bson.M{"check_count": patch.CheckCount}
	if c := patch.Composition; c != nil {
		set["title"] = c.Title
		set["brand"] = c.Brand
		set["composition_grade"] = c.CompositionGrade
		set["fibers"] = c.Fibers
		set["lining"] = c.Lining
		set["trim"] = c.Trim
		set["raw_text"] = c.RawText
	}
	return bson.M{"$set": set}
}
