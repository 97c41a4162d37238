package databases

// go generate: mockery --name CaseDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/jurychain-api/metrics"
	"github.com/linesmerrill/jurychain-api/models"
)

const caseName = "cases"

// ErrNotFound is returned when no case matches a filter
var ErrNotFound = errors.New("case not found")

// CaseDatabase contains the methods to use with the case database
type CaseDatabase interface {
	Save(context.Context, *models.Case) error
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Case, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Case, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (int64, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type caseDatabase struct {
	db DatabaseHelper
}

// NewCaseDatabase initializes a new instance of case database with the provided db connection
func NewCaseDatabase(db DatabaseHelper) CaseDatabase {
	return &caseDatabase{
		db: db,
	}
}

// Save writes the whole case, keyed by its ID
func (c *caseDatabase) Save(ctx context.Context, cs *models.Case) (err error) {
	defer observe("save", time.Now(), &err)
	_, err = c.db.Collection(caseName).ReplaceOne(ctx, bson.M{"_id": cs.ID}, cs, options.Replace().SetUpsert(true))
	return err
}

func (c *caseDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (cs *models.Case, err error) {
	defer observe("find_one", time.Now(), &err)
	found := &models.Case{}
	err = c.db.Collection(caseName).FindOne(ctx, filter, opts...).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (c *caseDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (cases []models.Case, err error) {
	defer observe("find", time.Now(), &err)
	cur, err := c.db.Collection(caseName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(ctx, &cases)
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// UpdateOne applies update to the first matching case and returns how many cases matched
func (c *caseDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (matched int64, err error) {
	defer observe("update_one", time.Now(), &err)
	res, err := c.db.Collection(caseName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *caseDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (n int64, err error) {
	defer observe("count", time.Now(), &err)
	return c.db.Collection(caseName).CountDocuments(ctx, filter, opts...)
}

func observe(operation string, start time.Time, err *error) {
	var e error
	if err != nil && !errors.Is(*err, ErrNotFound) {
		e = *err
	}
	metrics.RecordDBOperation(operation, caseName, time.Since(start), e)
}
