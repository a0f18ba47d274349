// internal/store/mongo.go
package store

import (
	"context"
	"errors"
	"fmt"

	"blood-sea-api/internal/common/database"
	stderrors "blood-sea-api/internal/common/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store on MongoDB. Document ids map to string _id
// values so the rest of the service never sees ObjectIDs.
type MongoStore struct {
	client *database.MongoClient
}

func NewMongoStore(client *database.MongoClient) *MongoStore {
	return &MongoStore{client: client}
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.client.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, stderrors.NewStoreUnavailableError(err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) GetByIDs(ctx context.Context, collection string, ids []string) (map[string]Document, error) {
	cursor, err := s.client.Collection(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, stderrors.NewStoreUnavailableError(err)
	}
	defer cursor.Close(ctx)

	result := make(map[string]Document, len(ids))
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, stderrors.NewStoreUnavailableError(err)
		}
		doc := fromBSON(raw)
		result[StringField(doc, "id")] = doc
	}
	if err := cursor.Err(); err != nil {
		return nil, stderrors.NewStoreUnavailableError(err)
	}
	return result, nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := StringField(doc, "id")
	if id == "" {
		id = uuid.New().String()
	}

	row := bson.M{"_id": id}
	for k, v := range doc {
		if k == "id" {
			continue
		}
		row[k] = v
	}

	if _, err := s.client.Collection(collection).InsertOne(ctx, row); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", stderrors.NewConflictError(fmt.Sprintf("document %s already exists", id))
		}
		return "", stderrors.NewStoreUnavailableError(err)
	}
	return id, nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Document) error {
	set := bson.M{}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		set[k] = v
	}

	res, err := s.client.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return stderrors.NewStoreUnavailableError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filters []Filter) ([]Document, error) {
	query := bson.M{}
	for _, f := range filters {
		switch f.Op {
		case OpEqual:
			query[f.Field] = f.Value
		case OpIn:
			query[f.Field] = bson.M{"$in": f.Value}
		default:
			return nil, fmt.Errorf("unsupported filter op: %s", f.Op)
		}
	}

	cursor, err := s.client.Collection(collection).Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, stderrors.NewStoreUnavailableError(err)
	}
	defer cursor.Close(ctx)

	var result []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, stderrors.NewStoreUnavailableError(err)
		}
		result = append(result, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, stderrors.NewStoreUnavailableError(err)
	}
	return result, nil
}

// fromBSON renames _id to id and converts bson.M to a Document.
func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			if id, ok := v.(string); ok {
				doc["id"] = id
			} else {
				doc["id"] = fmt.Sprintf("%v", v)
			}
			continue
		}
		doc[k] = v
	}
	return doc
}
