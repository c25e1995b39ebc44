package docstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

type principals struct {
	coll *mongo.Collection
	kind model.Kind
}

func (s *principals) Create(ctx context.Context, p *model.Principal) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Kind = s.kind
	if s.kind == model.KindAdmin {
		p.Role = model.RoleAdmin
	} else if p.Role == "" {
		p.Role = model.RoleUser
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrEmailExists
		}
		return err
	}
	return nil
}

func (s *principals) GetByID(ctx context.Context, id string) (*model.Principal, error) {
	return s.findOne(ctx, byID(id))
}

func (s *principals) GetByEmail(ctx context.Context, email string) (*model.Principal, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *principals) List(ctx context.Context) ([]*model.Principal, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []*model.Principal{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for _, p := range out {
		p.Kind = s.kind
	}
	return out, nil
}

func (s *principals) Update(ctx context.Context, p *model.Principal) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx, byID(p.ID), bson.M{"$set": bson.M{
		"name":      p.Name,
		"email":     p.Email,
		"password":  p.PasswordHash,
		"role":      p.Role,
		"updatedAt": p.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrEmailExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *principals) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *principals) findOne(ctx context.Context, filter bson.M) (*model.Principal, error) {
	var p model.Principal
	if err := s.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	p.Kind = s.kind
	return &p, nil
}
