package docstore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

type categories struct{ coll *mongo.Collection }

func (s *categories) Create(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Name = strings.TrimSpace(c.Name)
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (s *categories) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := s.coll.FindOne(ctx, byID(id)).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// GetByName matches the whole name case-insensitively; the input is quoted
// so that regex metacharacters in a category name are literal.
func (s *categories) GetByName(ctx context.Context, name string) (*model.Category, error) {
	pattern := "^" + regexp.QuoteMeta(strings.TrimSpace(name)) + "$"
	var c model.Category
	if err := s.coll.FindOne(ctx, bson.M{"name": primitive.Regex{Pattern: pattern, Options: "i"}}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *categories) List(ctx context.Context) ([]*model.Category, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []*model.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *categories) Update(ctx context.Context, c *model.Category) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx, byID(c.ID), bson.M{"$set": bson.M{
		"name":      strings.TrimSpace(c.Name),
		"image":     c.Image,
		"updatedAt": c.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *categories) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, s.coll, id)
}

func (s *categories) CountByImage(ctx context.Context, path, excludeID string) (int64, error) {
	return s.coll.CountDocuments(ctx, imageFilter(path, excludeID))
}

type brands struct{ coll *mongo.Collection }

func (s *brands) Create(ctx context.Context, b *model.Brand) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	_, err := s.coll.InsertOne(ctx, b)
	return err
}

func (s *brands) GetByID(ctx context.Context, id string) (*model.Brand, error) {
	var b model.Brand
	if err := s.coll.FindOne(ctx, byID(id)).Decode(&b); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *brands) List(ctx context.Context) ([]*model.Brand, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []*model.Brand{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *brands) Update(ctx context.Context, b *model.Brand) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx, byID(b.ID), bson.M{"$set": bson.M{
		"name":        b.Name,
		"description": b.Description,
		"updatedAt":   b.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *brands) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, s.coll, id)
}

type products struct{ coll *mongo.Collection }

func (s *products) Create(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UpdatedAt = time.Now().UTC()
	_, err := s.coll.InsertOne(ctx, p)
	return err
}

func (s *products) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := s.coll.FindOne(ctx, byID(id)).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *products) List(ctx context.Context) ([]*model.Product, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updateDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []*model.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the whole product document.
func (s *products) Update(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.coll.ReplaceOne(ctx, byID(p.ID), p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *products) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, s.coll, id)
}

func (s *products) CountByImage(ctx context.Context, path, excludeID string) (int64, error) {
	return s.coll.CountDocuments(ctx, imageFilter(path, excludeID))
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
