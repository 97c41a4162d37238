package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/jurychain-api/config"
	"github.com/linesmerrill/jurychain-api/databases"
	"github.com/linesmerrill/jurychain-api/databases/mocks"
	"github.com/linesmerrill/jurychain-api/models"
)

func TestNewCaseDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	caseDB := databases.NewCaseDatabase(db)

	assert.NotEmpty(t, caseDB)
}

func TestCaseDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperMissing databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperMissing = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperMissing.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(mongo.ErrNoDocuments)

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).ID = "CASE-mocked-1"
		(*arg).FinalVerdict = "Claimant Wins"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": "error"}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": "missing"}).
		Return(srHelperMissing)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": "CASE-mocked-1"}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "cases").Return(collectionHelper)

	caseDba := databases.NewCaseDatabase(dbHelper)

	cs, err := caseDba.FindOne(context.Background(), bson.M{"_id": "error"})
	assert.Empty(t, cs)
	assert.EqualError(t, err, "mocked-error")

	cs, err = caseDba.FindOne(context.Background(), bson.M{"_id": "missing"})
	assert.Empty(t, cs)
	assert.ErrorIs(t, err, databases.ErrNotFound)

	cs, err = caseDba.FindOne(context.Background(), bson.M{"_id": "CASE-mocked-1"})
	assert.Equal(t, &models.Case{ID: "CASE-mocked-1", FinalVerdict: "Claimant Wins"}, cs)
	assert.NoError(t, err)
}

func TestCaseDatabase_Find(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorErr databases.CursorHelper
	var cursorCorrect databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorErr = &mocks.CursorHelper{}
	cursorCorrect = &mocks.CursorHelper{}

	cursorErr.(*mocks.CursorHelper).
		On("Decode", context.Background(), mock.Anything).
		Return(errors.New("mocked-error"))

	cursorCorrect.(*mocks.CursorHelper).
		On("Decode", context.Background(), mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Case)
		*arg = []models.Case{{ID: "CASE-b"}, {ID: "CASE-a"}}
	})

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(cursorErr, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"unreachable": true}).
		Return(nil, errors.New("server selection timeout"))

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{}, opts).
		Return(cursorCorrect, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "cases").Return(collectionHelper)

	caseDba := databases.NewCaseDatabase(dbHelper)

	cases, err := caseDba.Find(context.Background(), bson.M{"error": true})
	assert.Empty(t, cases)
	assert.EqualError(t, err, "mocked-error")

	cases, err = caseDba.Find(context.Background(), bson.M{"unreachable": true})
	assert.Empty(t, cases)
	assert.EqualError(t, err, "server selection timeout")

	cases, err = caseDba.Find(context.Background(), bson.M{}, opts)
	assert.NoError(t, err)
	assert.Equal(t, []models.Case{{ID: "CASE-b"}, {ID: "CASE-a"}}, cases)
}

func TestCaseDatabase_Save(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	cs := &models.Case{ID: "CASE-save-1", Claimant: "Alice", Respondent: "Bob"}

	collectionHelper.
		On("ReplaceOne", context.Background(), bson.M{"_id": "CASE-save-1"}, cs, mock.MatchedBy(func(o *options.ReplaceOptions) bool {
			return o.Upsert != nil && *o.Upsert
		})).
		Return(&mongo.UpdateResult{UpsertedCount: 1}, nil).Once()
	collectionHelper.
		On("ReplaceOne", context.Background(), bson.M{"_id": "CASE-save-1"}, cs, mock.Anything).
		Return(nil, errors.New("mocked-error"))

	dbHelper.On("Collection", "cases").Return(collectionHelper)

	caseDba := databases.NewCaseDatabase(dbHelper)

	assert.NoError(t, caseDba.Save(context.Background(), cs))
	assert.EqualError(t, caseDba.Save(context.Background(), cs), "mocked-error")
}

func TestCaseDatabase_UpdateOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	update := bson.M{"$set": bson.M{"storedOnchain": true}}

	collectionHelper.
		On("UpdateOne", context.Background(), bson.M{"_id": "CASE-1"}, update).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	collectionHelper.
		On("UpdateOne", context.Background(), bson.M{"_id": "CASE-2"}, update).
		Return(&mongo.UpdateResult{}, nil)
	collectionHelper.
		On("UpdateOne", context.Background(), bson.M{"_id": "CASE-3"}, update).
		Return(nil, errors.New("mocked-error"))

	dbHelper.On("Collection", "cases").Return(collectionHelper)

	caseDba := databases.NewCaseDatabase(dbHelper)

	matched, err := caseDba.UpdateOne(context.Background(), bson.M{"_id": "CASE-1"}, update)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	matched, err = caseDba.UpdateOne(context.Background(), bson.M{"_id": "CASE-2"}, update)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), matched)

	_, err = caseDba.UpdateOne(context.Background(), bson.M{"_id": "CASE-3"}, update)
	assert.EqualError(t, err, "mocked-error")
}

func TestCaseDatabase_CountDocuments(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.
		On("CountDocuments", context.Background(), bson.M{}).
		Return(int64(42), nil)
	collectionHelper.
		On("CountDocuments", context.Background(), bson.M{"storedOnchain": true}).
		Return(int64(0), errors.New("mocked-error"))

	dbHelper.On("Collection", "cases").Return(collectionHelper)

	caseDba := databases.NewCaseDatabase(dbHelper)

	n, err := caseDba.CountDocuments(context.Background(), bson.M{})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = caseDba.CountDocuments(context.Background(), bson.M{"storedOnchain": true})
	assert.EqualError(t, err, "mocked-error")
}
