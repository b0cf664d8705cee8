package importer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/baderkha/sql2doc/pkg/migrate/artifact"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Opener : read access to a materialized artifact
type Opener interface {
	Open(h artifact.Handle) (afero.File, error)
}

// Collection : the part of *mongo.Collection the loader needs
type Collection interface {
	Drop(ctx context.Context) error
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoLoader : loads artifacts through the go driver instead of mongoimport
type MongoLoader struct {
	open       Opener
	collection func(db string, name string) Collection
}

func NewMongoLoader(client *mongo.Client, open Opener) *MongoLoader {
	return &MongoLoader{
		open: open,
		collection: func(db string, name string) Collection {
			return client.Database(db).Collection(name)
		},
	}
}

func (m *MongoLoader) Load(ctx context.Context, h artifact.Handle, req Request) error {
	docs, err := m.decode(h)
	if err != nil {
		return err
	}
	coll := m.collection(req.Database, req.DestinationTable)
	if req.Force {
		if err := coll.Drop(ctx); err != nil {
			return fmt.Errorf("MONGO_TARGET : Could not drop %s due to : %w", req.Target(), err)
		}
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("MONGO_TARGET : Could not insert into %s due to : %w", req.Target(), err)
	}
	return nil
}

// decode : json array -> documents, relaxed extended json keeps integers integral
func (m *MongoLoader) decode(h artifact.Handle) ([]interface{}, error) {
	f, err := m.open.Open(h)
	if err != nil {
		return nil, fmt.Errorf("%w : could not open %s : %w", ErrArtifact, h.Path, err)
	}
	defer f.Close()

	var raw []json.RawMessage
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w : could not decode %s : %w", ErrArtifact, h.Path, err)
	}
	docs := make([]interface{}, 0, len(raw))
	for i, r := range raw {
		var doc bson.D
		if err := bson.UnmarshalExtJSON(r, false, &doc); err != nil {
			return nil, fmt.Errorf("row %d of %s is not a document : %w", i+1, h.Table, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
