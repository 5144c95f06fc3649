package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"healtogether/cmd/internal/domain/entity"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

func (u *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return findOne[entity.User](ctx, u.coll, bson.M{"_id": id})
}

func (u *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return findOne[entity.User](ctx, u.coll, bson.M{"email": email})
}

func (u *UserRepository) FindAll(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return findMany[entity.User](ctx, u.coll, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (u *UserRepository) Save(ctx context.Context, user *entity.User) error {
	_, err := u.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return entity.ErrDuplicate
	}
	return err
}

// findOne decodes the first match, or returns nil when nothing matches.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter, opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]*T, 0)
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, cursor.Err()
}
