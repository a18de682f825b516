// Package audit appends order lifecycle entries to a MongoDB collection.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is where entries are stored.
const CollectionName = "order_audit"

const (
	ActionCreated       = "order.created"
	ActionStatusChanged = "order.status_changed"
)

type Entry struct {
	OrderID   string    `bson:"order_id"`
	Action    string    `bson:"action"`
	ActorID   string    `bson:"actor_id"`
	ActorRole string    `bson:"actor_role"`
	From      string    `bson:"from,omitempty"`
	To        string    `bson:"to,omitempty"`
	At        time.Time `bson:"at"`
}

// Inserter is the subset of *mongo.Collection used for writes.
type Inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

type MongoLog struct {
	coll   Inserter
	client *mongo.Client
}

// Connect opens a client and returns a log writing to db.order_audit.
func Connect(ctx context.Context, uri, db string) (*MongoLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoLog{coll: client.Database(db).Collection(CollectionName), client: client}, nil
}

// NewMongoLog writes to an already opened collection.
func NewMongoLog(coll Inserter) *MongoLog {
	return &MongoLog{coll: coll}
}

func (l *MongoLog) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if _, err := l.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (l *MongoLog) Close(ctx context.Context) error {
	if l.client == nil {
		return nil
	}
	return l.client.Disconnect(ctx)
}

// NopLog discards entries.
type NopLog struct{}

func (NopLog) Record(context.Context, Entry) error { return nil }
