package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/corey888773/notification-scheduler/internal/domain"
)

const (
	databaseName   = "notifications"
	collectionName = "notifications"

	mongoDuplicateKeyCode = 11000
)

// MongoStore is the MongoDB-backed NotificationStore.
type MongoStore struct {
	coll *mongo.Collection
}

// Connect dials MongoDB and verifies connectivity with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewMongoStore returns a NotificationStore backed by the given client.
func NewMongoStore(client *mongo.Client) *MongoStore {
	return &MongoStore{coll: client.Database(databaseName).Collection(collectionName)}
}

// EnsureIndexes provisions the compound index over (priority, status,
// scheduledTime) that makes the due-set query selective. Idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "priority", Value: 1},
			{Key: "status", Value: 1},
			{Key: "scheduledTime", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create notifications index: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, n *domain.Notification) error {
	_, err := s.coll.InsertOne(ctx, n)
	if err != nil {
		var we mongo.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == mongoDuplicateKeyCode {
					return domain.ErrDuplicateKey
				}
			}
		}
		return fmt.Errorf("%w: insert notification: %v", domain.ErrRepositoryError, err)
	}
	return nil
}

func (s *MongoStore) QueryDue(ctx context.Context, opts domain.QueryOptions) (Cursor, error) {
	filter := bson.D{}
	if opts.Priority != nil {
		filter = append(filter, bson.E{Key: "priority", Value: *opts.Priority})
	}
	if opts.Status != nil {
		filter = append(filter, bson.E{Key: "status", Value: *opts.Status})
	}
	if opts.ScheduledTimeUpperBound != nil {
		filter = append(filter, bson.E{Key: "scheduledTime", Value: bson.D{{Key: "$lte", Value: *opts.ScheduledTimeUpperBound}}})
	}

	findOpts := options.Find()
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cur, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: query due notifications: %v", domain.ErrRepositoryError, err)
	}

	var upperBound time.Time
	if opts.ScheduledTimeUpperBound != nil {
		upperBound = *opts.ScheduledTimeUpperBound
	}
	return &mongoCursor{
		cur:              cur,
		respectNighttime: opts.RespectNighttime && opts.ScheduledTimeUpperBound != nil,
		upperBound:       upperBound,
	}, nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, id string, newStatus domain.Status) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "status", Value: domain.StatusPending}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: newStatus}}}},
	)
	if err != nil {
		return fmt.Errorf("%w: update status: %v", domain.ErrRepositoryError, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: no pending notification matched id %q", domain.ErrRepositoryError, id)
	}
	return nil
}

func (s *MongoStore) IncrementRetryCount(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "retryCount", Value: 1}}}},
	)
	if err != nil {
		return fmt.Errorf("%w: increment retry count: %v", domain.ErrRepositoryError, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: no notification matched id %q", domain.ErrRepositoryError, id)
	}
	return nil
}

// mongoCursor wraps a *mongo.Cursor, additionally filtering documents
// against the quiet-hours predicate as they're decoded — see
// quietHoursSatisfied for the arithmetic.
type mongoCursor struct {
	cur              *mongo.Cursor
	respectNighttime bool
	upperBound       time.Time
	current          domain.Notification
	err              error
}

func (c *mongoCursor) Next(ctx context.Context) bool {
	for c.cur.Next(ctx) {
		var n domain.Notification
		if err := c.cur.Decode(&n); err != nil {
			if c.err == nil {
				c.err = fmt.Errorf("%w: decode notification: %v", domain.ErrSerialError, err)
			}
			continue
		}
		if c.respectNighttime && !quietHoursSatisfied(c.upperBound, n.Recipient.TimezoneOffset) {
			continue
		}
		c.current = n
		return true
	}
	if err := c.cur.Err(); err != nil && c.err == nil {
		c.err = fmt.Errorf("%w: %v", domain.ErrRepositoryError, err)
	}
	return false
}

func (c *mongoCursor) Decode(n *domain.Notification) error {
	*n = c.current
	return nil
}

func (c *mongoCursor) Err() error { return c.err }

func (c *mongoCursor) Close(ctx context.Context) error {
	return c.cur.Close(ctx)
}

var _ NotificationStore = (*MongoStore)(nil)
