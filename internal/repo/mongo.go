package repo

import (
	"ChocoWrappers/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// BackendMongo — имя основного хранилища.
const BackendMongo = "mongo"

// toggleAttempts — сколько раз ToggleLike повторяет пару условных обновлений,
// если документ переключили между ними.
const toggleAttempts = 3

type fielder interface {
	Fields() map[string]any
}

// idFilter сопоставляет id и с ObjectID, и со строковым _id (документы, импортированные из JSON).
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

// buildFilter переводит Filter в запрос MongoDB.
func buildFilter(f Filter) bson.M {
	var conds []bson.M
	if f.ID != "" {
		conds = append(conds, idFilter(f.ID))
	}
	if f.Username != "" {
		conds = append(conds, bson.M{"username": f.Username})
	}
	if f.ModelNumber != "" {
		conds = append(conds, bson.M{"modelNumber": f.ModelNumber})
	}
	if f.VisibleAt != nil {
		conds = append(conds, bson.M{"$or": bson.A{
			bson.M{"scheduledDate": bson.M{"$exists": false}},
			bson.M{"scheduledDate": nil},
			bson.M{"scheduledDate": bson.M{"$lte": *f.VisibleAt}},
		}})
	}
	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	default:
		and := make(bson.A, 0, len(conds))
		for _, c := range conds {
			and = append(and, c)
		}
		return bson.M{"$and": and}
	}
}

// wrapErr помечает сетевые ошибки и таймауты как ErrConnection,
// нарушение уникального индекса — как ErrDuplicateID.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateID, err)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return err
}

type mongoCollection[T any, PT document[T], P fielder] struct {
	coll *mongo.Collection
}

func (c *mongoCollection[T, PT, P]) FindAll(ctx context.Context, f Filter, sortDescBy string) ([]T, error) {
	opts := options.Find()
	if sortDescBy != SortNone {
		opts.SetSort(bson.D{{Key: sortDescBy, Value: -1}})
	}
	cur, err := c.coll.Find(ctx, buildFilter(f), opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}

func (c *mongoCollection[T, PT, P]) FindOne(ctx context.Context, f Filter) (*T, error) {
	doc := new(T)
	if err := c.coll.FindOne(ctx, buildFilter(f)).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, wrapErr(err)
	}
	return doc, nil
}

func (c *mongoCollection[T, PT, P]) InsertOne(ctx context.Context, doc *T) (string, error) {
	stored := PT(doc).Clone()
	PT(stored).StampCreated(time.Now().UTC())
	res, err := c.coll.InsertOne(ctx, stored)
	if err != nil {
		return "", wrapErr(err)
	}
	id := insertedID(res.InsertedID)
	PT(stored).SetDocID(id)
	*doc = *stored
	return id, nil
}

func (c *mongoCollection[T, PT, P]) InsertMany(ctx context.Context, docs []*T) ([]string, error) {
	if len(docs) == 0 {
		return []string{}, nil
	}
	now := time.Now().UTC()
	batch := make([]any, 0, len(docs))
	stored := make([]*T, 0, len(docs))
	for _, d := range docs {
		s := PT(d).Clone()
		PT(s).StampCreated(now)
		batch = append(batch, s)
		stored = append(stored, s)
	}
	res, err := c.coll.InsertMany(ctx, batch, options.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, wrapErr(err)
	}
	ids := make([]string, 0, len(res.InsertedIDs))
	for i, raw := range res.InsertedIDs {
		id := insertedID(raw)
		PT(stored[i]).SetDocID(id)
		*docs[i] = *stored[i]
		ids = append(ids, id)
	}
	return ids, nil
}

func insertedID(raw any) string {
	switch v := raw.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (c *mongoCollection[T, PT, P]) UpdateOne(ctx context.Context, id string, patch P) (bool, error) {
	set := bson.M{}
	for k, v := range patch.Fields() {
		set[k] = v
	}
	set["updatedAt"] = time.Now().UTC()
	res, err := c.coll.UpdateOne(ctx, idFilter(id), bson.M{"$set": set})
	if err != nil {
		return false, wrapErr(err)
	}
	return res.MatchedCount > 0, nil
}

func (c *mongoCollection[T, PT, P]) DeleteOne(ctx context.Context, id string) (bool, error) {
	res, err := c.coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return false, wrapErr(err)
	}
	return res.DeletedCount > 0, nil
}

func (c *mongoCollection[T, PT, P]) Count(ctx context.Context) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.M{})
	return n, wrapErr(err)
}

type mongoWrappers struct {
	*mongoCollection[model.Wrapper, *model.Wrapper, model.WrapperPatch]
}

// ToggleLike — два условных FindOneAndUpdate: проверка членства и изменение счётчика
// выполняются сервером атомарно в рамках одного документа.
func (w mongoWrappers) ToggleLike(ctx context.Context, id, user string) (int, bool, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	for range toggleAttempts {
		now := time.Now().UTC()
		var doc model.Wrapper

		err := w.coll.FindOneAndUpdate(ctx,
			bson.M{"$and": bson.A{idFilter(id), bson.M{"likedBy": bson.M{"$ne": user}}}},
			bson.M{"$addToSet": bson.M{"likedBy": user}, "$inc": bson.M{"likes": 1}, "$set": bson.M{"updatedAt": now}},
			after,
		).Decode(&doc)
		if err == nil {
			return doc.Likes, true, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return 0, false, wrapErr(err)
		}

		err = w.coll.FindOneAndUpdate(ctx,
			bson.M{"$and": bson.A{idFilter(id), bson.M{"likedBy": user}}},
			bson.M{"$pull": bson.M{"likedBy": user}, "$inc": bson.M{"likes": -1}, "$set": bson.M{"updatedAt": now}},
			after,
		).Decode(&doc)
		if err == nil {
			return doc.Likes, false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return 0, false, wrapErr(err)
		}

		// ни одно условие не совпало: документа нет, либо его переключили между запросами
		n, err := w.coll.CountDocuments(ctx, idFilter(id))
		if err != nil {
			return 0, false, wrapErr(err)
		}
		if n == 0 {
			return 0, false, ErrNotFound
		}
	}
	return 0, false, fmt.Errorf("toggle like %s: concurrent updates, giving up", id)
}

type mongoAdmins struct {
	*mongoCollection[model.Admin, *model.Admin, model.AdminPatch]
}

// MongoBackend — основное хранилище на MongoDB.
type MongoBackend struct {
	client *mongo.Client
	db     *mongo.Database

	wrappers mongoWrappers
	admins   mongoAdmins
}

// OpenMongoBackend подключается к MongoDB. timeout ограничивает выбор сервера и установку соединения.
func OpenMongoBackend(ctx context.Context, uri, database string, timeout time.Duration) (*MongoBackend, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: MONGODB_URI is not set", ErrConnection)
	}
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout).
		SetMaxPoolSize(10).
		SetRetryWrites(true).
		SetWriteConcern(writeconcern.Majority())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return NewMongoBackend(client, database), nil
}

// NewMongoBackend оборачивает уже созданный клиент.
func NewMongoBackend(client *mongo.Client, database string) *MongoBackend {
	db := client.Database(database)
	return &MongoBackend{
		client: client,
		db:     db,
		wrappers: mongoWrappers{&mongoCollection[model.Wrapper, *model.Wrapper, model.WrapperPatch]{
			coll: db.Collection(CollectionWrappers),
		}},
		admins: mongoAdmins{&mongoCollection[model.Admin, *model.Admin, model.AdminPatch]{
			coll: db.Collection(CollectionAdmins),
		}},
	}
}

func (b *MongoBackend) Name() string           { return BackendMongo }
func (b *MongoBackend) Wrappers() WrapperStore { return b.wrappers }
func (b *MongoBackend) Admins() AdminStore     { return b.admins }

func (b *MongoBackend) HealthCheck(ctx context.Context) error {
	if err := b.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

func (b *MongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
