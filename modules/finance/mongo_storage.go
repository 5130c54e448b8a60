package finance

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	accountsCollection     = "accounts"
	transactionsCollection = "transactions"
)

// MongoStorage implements AccountStorage and TransactionStorage on a
// MongoDB database.
type MongoStorage struct {
	accounts     *mongo.Collection
	transactions *mongo.Collection
}

// NewMongoStorage creates storage bound to the given database.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{
		accounts:     db.Collection(accountsCollection),
		transactions: db.Collection(transactionsCollection),
	}
}

type mongoAccount struct {
	ID      bson.ObjectID `bson:"_id,omitempty"`
	Name    string        `bson:"name"`
	Type    string        `bson:"type"`
	Balance float64       `bson:"balance"`
	Icon    string        `bson:"icon"`
	Color   string        `bson:"color"`
}

func (d mongoAccount) toDomain() Account {
	return Account{
		ID:      d.ID.Hex(),
		Name:    d.Name,
		Type:    d.Type,
		Balance: d.Balance,
		Icon:    d.Icon,
		Color:   d.Color,
	}
}

type mongoTransaction struct {
	ID              bson.ObjectID   `bson:"_id,omitempty"`
	Amount          float64         `bson:"amount"`
	TxnType         TransactionType `bson:"txn_type"`
	Category        string          `bson:"category"`
	Counterparty    string          `bson:"counterparty"`
	Message         string          `bson:"message"`
	Date            time.Time       `bson:"date"`
	AIInsight       string          `bson:"ai_insight"`
	ComplianceAlert string          `bson:"compliance_alert"`
}

func (d mongoTransaction) toDomain() Transaction {
	return Transaction{
		ID:              d.ID.Hex(),
		Amount:          d.Amount,
		TxnType:         d.TxnType,
		Category:        d.Category,
		Counterparty:    d.Counterparty,
		Message:         d.Message,
		Date:            d.Date,
		AIInsight:       d.AIInsight,
		ComplianceAlert: d.ComplianceAlert,
	}
}

func toMongoTransaction(t Transaction) (mongoTransaction, error) {
	doc := mongoTransaction{
		Amount:          t.Amount,
		TxnType:         t.TxnType,
		Category:        t.Category,
		Counterparty:    t.Counterparty,
		Message:         t.Message,
		Date:            t.Date,
		AIInsight:       t.AIInsight,
		ComplianceAlert: t.ComplianceAlert,
	}
	if t.ID != "" {
		oid, err := bson.ObjectIDFromHex(t.ID)
		if err != nil {
			return doc, fmt.Errorf("invalid transaction id %q: %w", t.ID, err)
		}
		doc.ID = oid
	}
	return doc, nil
}

func (s *MongoStorage) Count(ctx context.Context) (int, error) {
	n, err := s.accounts.CountDocuments(ctx, bson.D{})
	return int(n), err
}

func (s *MongoStorage) InsertMany(ctx context.Context, accounts []Account) error {
	docs := make([]any, 0, len(accounts))
	for _, a := range accounts {
		docs = append(docs, mongoAccount{
			ID:      bson.NewObjectID(),
			Name:    a.Name,
			Type:    a.Type,
			Balance: a.Balance,
			Icon:    a.Icon,
			Color:   a.Color,
		})
	}
	_, err := s.accounts.InsertMany(ctx, docs)
	return err
}

func (s *MongoStorage) List(ctx context.Context) ([]Account, error) {
	cursor, err := s.accounts.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoAccount
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *MongoStorage) FindByName(ctx context.Context, name string) (*Account, error) {
	filter := bson.D{{Key: "name", Value: bson.D{
		{Key: "$regex", Value: "^" + regexp.QuoteMeta(name) + "$"},
		{Key: "$options", Value: "i"},
	}}}

	var doc mongoAccount
	if err := s.accounts.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	acc := doc.toDomain()
	return &acc, nil
}

func (s *MongoStorage) SetBalance(ctx context.Context, id string, balance float64) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.accounts.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "balance", Value: balance}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStorage) Insert(ctx context.Context, txn Transaction) (Transaction, error) {
	doc, err := toMongoTransaction(txn)
	if err != nil {
		return Transaction{}, err
	}
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}
	if _, err := s.transactions.InsertOne(ctx, doc); err != nil {
		return Transaction{}, err
	}
	return doc.toDomain(), nil
}

func (s *MongoStorage) FindByID(ctx context.Context, id string) (*Transaction, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc mongoTransaction
	if err := s.transactions.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	txn := doc.toDomain()
	return &txn, nil
}

func (s *MongoStorage) Replace(ctx context.Context, txn Transaction) error {
	doc, err := toMongoTransaction(txn)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.transactions.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStorage) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := s.transactions.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStorage) ListAll(ctx context.Context) ([]Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return s.findTransactions(ctx, bson.D{}, opts)
}

func (s *MongoStorage) ListByDateRange(ctx context.Context, start, end time.Time) ([]Transaction, error) {
	filter := bson.D{{Key: "date", Value: bson.D{
		{Key: "$gte", Value: start},
		{Key: "$lte", Value: end},
	}}}
	return s.findTransactions(ctx, filter, nil)
}

func (s *MongoStorage) ListByCategory(ctx context.Context, category string) ([]Transaction, error) {
	filter := bson.D{{Key: "category", Value: bson.D{
		{Key: "$regex", Value: "^" + regexp.QuoteMeta(category) + "$"},
		{Key: "$options", Value: "i"},
	}}}
	return s.findTransactions(ctx, filter, nil)
}

func (s *MongoStorage) Search(ctx context.Context, query string) ([]Transaction, error) {
	pattern := regexp.QuoteMeta(query)
	fieldFilter := func(field string) bson.D {
		return bson.D{{Key: field, Value: bson.D{
			{Key: "$regex", Value: pattern},
			{Key: "$options", Value: "i"},
		}}}
	}
	filter := bson.D{{Key: "$or", Value: bson.A{
		fieldFilter("counterparty"),
		fieldFilter("message"),
		fieldFilter("category"),
	}}}
	return s.findTransactions(ctx, filter, nil)
}

func (s *MongoStorage) Categories(ctx context.Context) ([]string, error) {
	res := s.transactions.Distinct(ctx, "category", bson.D{})
	if err := res.Err(); err != nil {
		return nil, err
	}
	var raw []any
	if err := res.Decode(&raw); err != nil {
		return nil, err
	}

	var out []string
	for _, v := range raw {
		if c, ok := v.(string); ok && c != "" {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MongoStorage) DeleteAll(ctx context.Context) error {
	_, err := s.transactions.DeleteMany(ctx, bson.D{})
	return err
}

func (s *MongoStorage) findTransactions(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]Transaction, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = s.transactions.Find(ctx, filter, opts)
	} else {
		cursor, err = s.transactions.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoTransaction
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
