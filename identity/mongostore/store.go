// Package mongostore provides the MongoDB-backed identity.Store.
//
// Session writes replace the embedded session document in a single update, so
// no partial write is ever visible; concurrent writers for the same identity
// race under last-write-wins.
package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campushub/portal-auth/identity"
)

const collectionName = "identities"

var _ identity.Store = (*Store)(nil)

type Store struct {
	collection *mongo.Collection
	log        zerolog.Logger
}

// Connect establishes and verifies a MongoDB connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "[mongostore.Connect] Connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "[mongostore.Connect] Ping")
	}
	return client, nil
}

func New(db *mongo.Database, log zerolog.Logger) *Store {
	collection := db.Collection(collectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Warn().Err(err).Msg("failed to create unique index on username")
	}

	return &Store{collection: collection, log: log}
}

func (s *Store) Upsert(ctx context.Context, ident *identity.Identity) error {
	if ident.ID == "" {
		ident.ID = uuid.New().String()
	}

	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": ident.ID}, ident, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Errorf("identity with username %s already exists", ident.Username)
		}
		return errors.Wrap(err, "[mongostore.Upsert] ReplaceOne")
	}
	return nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*identity.Identity, error) {
	var ident identity.Identity
	err := s.collection.FindOne(ctx, bson.M{"username": username}).Decode(&ident)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, identity.ErrIdentityNotFound
		}
		s.log.Error().Err(err).Str("username", username).Msg("identity lookup failed")
		return nil, errors.Wrap(err, "[mongostore.GetByUsername] FindOne")
	}
	return &ident, nil
}

func (s *Store) SaveSession(ctx context.Context, identityID string, session identity.Session) error {
	update := bson.M{"$set": bson.M{"session": session}}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": identityID}, update)
	if err != nil {
		s.log.Error().Err(err).Str("id", identityID).Msg("session save failed")
		return errors.Wrap(err, "[mongostore.SaveSession] UpdateOne")
	}
	if result.MatchedCount == 0 {
		return identity.ErrIdentityNotFound
	}
	return nil
}

func (s *Store) FindByRefreshToken(ctx context.Context, refreshToken string) (*identity.Identity, error) {
	if refreshToken == "" {
		return nil, identity.ErrIdentityNotFound
	}

	var ident identity.Identity
	err := s.collection.FindOne(ctx, bson.M{"session.refresh_token": refreshToken}).Decode(&ident)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, identity.ErrIdentityNotFound
		}
		s.log.Error().Err(err).Msg("refresh token lookup failed")
		return nil, errors.Wrap(err, "[mongostore.FindByRefreshToken] FindOne")
	}
	return &ident, nil
}

func (s *Store) ClearByAccessToken(ctx context.Context, accessToken string) (*identity.Identity, error) {
	if accessToken == "" {
		return nil, identity.ErrIdentityNotFound
	}

	update := bson.M{"$unset": bson.M{
		"session.access_token":  "",
		"session.refresh_token": "",
		"session.expiry_date":   "",
	}}

	// The default return document is the one before the update, so the
	// caller sees the identity as it was prior to the clear.
	result := s.collection.FindOneAndUpdate(ctx, bson.M{"session.access_token": accessToken}, update)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, identity.ErrIdentityNotFound
		}
		s.log.Error().Err(result.Err()).Msg("session clear failed")
		return nil, errors.Wrap(result.Err(), "[mongostore.ClearByAccessToken] FindOneAndUpdate")
	}

	var prior identity.Identity
	if err := result.Decode(&prior); err != nil {
		return nil, errors.Wrap(err, "[mongostore.ClearByAccessToken] Decode")
	}
	return &prior, nil
}
