package citizens

import (
	"context"
	"errors"
	"log"
	"time"

	mg "dga_gateway/internal/config/connections/mongo"
	"dga_gateway/internal/failure"
	"dga_gateway/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CitizensCollection keeps the collection name the first deployment used.
const CitizensCollection = "User"

type MongoStore struct {
	mg   *mg.Mongo
	coll string
}

func NewMongoStore(m *mg.Mongo) *MongoStore {
	return &MongoStore{mg: m, coll: CitizensCollection}
}

func (s *MongoStore) collection() (*mongo.Collection, error) {
	if s.mg == nil || s.mg.Client == nil || s.mg.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}
	return s.mg.Database.Collection(s.coll), nil
}

// EnsureSchema creates the unique citizenId index the upsert relies on.
func (s *MongoStore) EnsureSchema(ctx context.Context) error {
	coll, err := s.collection()
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "citizenId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("citizenId_unique"),
	})
	return err
}

// Upsert is a single findOneAndUpdate with upsert=true, so concurrent logins
// for one citizen converge on one document.
func (s *MongoStore) Upsert(ctx context.Context, rec models.CitizenRecord) (models.CitizenRecord, error) {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return models.CitizenRecord{}, failure.Wrap(failure.KindStore, "invalid citizen record", err)
	}
	coll, err := s.collection()
	if err != nil {
		return models.CitizenRecord{}, failure.Wrap(failure.KindStore, "mongo not available", err)
	}

	now := time.Now().UTC()
	filter := bson.M{"citizenId": rec.CitizenID}
	update := bson.M{
		"$set": bson.M{
			"userId":    rec.UserID,
			"firstname": rec.Firstname,
			"lastname":  rec.Lastname,
			"mobile":    rec.Mobile,
			"email":     rec.Email,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.CitizenRecord
	err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if mongo.IsDuplicateKeyError(err) {
		// two racing inserts: the loser now matches the winner's document
		log.Printf("[STORE][MONGO][WARN] duplicate key on upsert citizen_id=%s, applying as update", rec.CitizenID)
		err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	}
	if err != nil {
		return models.CitizenRecord{}, failure.Wrap(failure.KindStore, "upsert citizen", err)
	}
	return out, nil
}

func (s *MongoStore) List(ctx context.Context, limit int64) ([]models.CitizenRecord, error) {
	coll, err := s.collection()
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	recs := make([]models.CitizenRecord, 0)
	for cur.Next(ctx) {
		var r models.CitizenRecord
		if err := cur.Decode(&r); err != nil {
			log.Printf("[STORE][MONGO][WARN] skip undecodable document: %v", err)
			continue
		}
		recs = append(recs, r)
	}
	return recs, cur.Err()
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if s.mg == nil || s.mg.Client == nil {
		return errors.New("mongo not initialized")
	}
	return s.mg.Client.Ping(ctx, nil)
}
