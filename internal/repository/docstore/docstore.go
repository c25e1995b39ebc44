// Package docstore implements the repository contracts on top of MongoDB.
// Each principal kind and each catalog entity lives in its own collection;
// documents use the application generated uuid as _id.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

// New returns Stores backed by db.  EnsureIndexes should run once before
// serving traffic so that unique emails and category names are enforced.
func New(db *mongo.Database) *repository.Stores {
	return &repository.Stores{
		Users:      &principals{coll: db.Collection(model.KindUser.Collection()), kind: model.KindUser},
		Admins:     &principals{coll: db.Collection(model.KindAdmin.Collection()), kind: model.KindAdmin},
		Categories: &categories{coll: db.Collection("categories")},
		Brands:     &brands{coll: db.Collection("brands")},
		Products:   &products{coll: db.Collection("products")},
		Close:      func(ctx context.Context) error { return db.Client().Disconnect(ctx) },
	}
}

// caseInsensitive compares strings ignoring case for index and queries.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// EnsureIndexes creates the unique and lookup indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"users":  {{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		"admins": {{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		"categories": {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
			{Keys: bson.D{{Key: "image", Value: 1}}},
		},
		"products": {
			{Keys: bson.D{{Key: "image", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes %s: %w", coll, err)
		}
	}
	return nil
}

// notFound maps the driver's empty result to the shared sentinel.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

func byID(id string) bson.M { return bson.M{"_id": id} }

// imageFilter matches documents using path other than excludeID.
func imageFilter(path, excludeID string) bson.M {
	return bson.M{"image": path, "_id": bson.M{"$ne": excludeID}}
}
