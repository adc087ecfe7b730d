package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"briefroom.app/relay/internal/lifecycle"
	"briefroom.app/relay/internal/model"
)

// MongoStore persists each session as one document keyed by id. Appends use
// $push and guarded writes put their precondition in the filter, so every
// mutation is a single atomic UpdateOne.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// ConnectMongo dials uri and pings the primary.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func (s *MongoStore) Create(ctx context.Context, session *model.Session) error {
	normalize(session)
	if _, err := s.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

func (s *MongoStore) AppendSubmission(ctx context.Context, id string, sub model.Submission) error {
	normalizeSubmission(&sub)
	return s.updateOne(ctx, id, activeFilter(id), bson.M{
		"$push": bson.M{"submissions": sub},
	})
}

func (s *MongoStore) AppendReview(ctx context.Context, id string, review model.Review) error {
	return s.updateOne(ctx, id, activeFilter(id), bson.M{
		"$push": bson.M{"synthesisReviews": review},
	})
}

func (s *MongoStore) SetSynthesis(ctx context.Context, id string, text string, at time.Time) error {
	return s.updateOne(ctx, id, activeFilter(id), bson.M{
		"$set": bson.M{
			"synthesis":            text,
			"synthesisVersion":     1,
			"synthesisGeneratedAt": at,
		},
	})
}

func (s *MongoStore) ApplyRevision(ctx context.Context, id string, expectedVersion int, update RevisionUpdate) error {
	filter := activeFilter(id)
	filter["synthesisVersion"] = versionMatch(expectedVersion)

	return s.updateOne(ctx, id, filter, bson.M{
		"$set": bson.M{
			"synthesis":            update.Synthesis,
			"synthesisVersion":     update.Version,
			"synthesisGeneratedAt": update.RevisedAt,
			"synthesisReviews":     bson.A{},
		},
		"$push": bson.M{
			"versionHistory": bson.M{
				"$each":  bson.A{update.Snapshot},
				"$slice": -lifecycle.MaxVersionHistory,
			},
		},
	})
}

func (s *MongoStore) Finalize(ctx context.Context, id string, f Finalization) error {
	return s.updateOne(ctx, id, activeFilter(id), bson.M{
		"$set": bson.M{
			"status":        model.SessionStatusFinalized,
			"finalizedAt":   f.FinalizedAt,
			"finalizedBy":   f.FinalizedBy,
			"finalDecision": f.FinalDecision,
		},
	})
}

// versionMatch mirrors lifecycle.CurrentVersion: a synthesis stored with a
// missing, null or zero version is version 1. A nil element in $in also
// matches a missing field.
func versionMatch(expected int) any {
	if expected == 1 {
		return bson.M{"$in": bson.A{1, 0, nil}}
	}
	return expected
}

func activeFilter(id string) bson.M {
	return bson.M{"_id": id, "status": model.SessionStatusActive}
}

// updateOne applies update when filter matches. A miss is ErrNotFound if the
// session is gone and ErrConditionFailed otherwise.
func (s *MongoStore) updateOne(ctx context.Context, id string, filter, update bson.M) error {
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConditionFailed
}
