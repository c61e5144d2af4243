package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpupo63/company-rating-backend/errs"
	"github.com/rpupo63/company-rating-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const companiesCollection = "companies"

type companyDocument struct {
	ID                   primitive.ObjectID    `bson:"_id,omitempty"`
	Company              string                `bson:"company"`
	Location             string                `bson:"location"`
	BusinessDomain       string                `bson:"business_domain"`
	Tags                 []string              `bson:"tags"`
	Stipend              float64               `bson:"stipend"`
	Projects             []models.ProjectEntry `bson:"projects"`
	RatingCompanyOverall *float64              `bson:"rating_company_overall"`
	RatingLocation       *float64              `bson:"rating_location"`
	RatingStipend        *float64              `bson:"rating_stipend"`
	ReachedOutreach      bool                  `bson:"reached_outreach"`
	Remarks              string                `bson:"remarks"`
	Version              int64                 `bson:"version"`
}

func newCompanyDocument(rec models.CompanyRecord) companyDocument {
	return companyDocument{
		Company:              rec.Company,
		Location:             rec.Location,
		BusinessDomain:       rec.BusinessDomain,
		Tags:                 nonNilTags(rec.Tags),
		Stipend:              rec.Stipend,
		Projects:             nonNilProjects(rec.Projects),
		RatingCompanyOverall: rec.RatingCompanyOverall,
		RatingLocation:       rec.RatingLocation,
		RatingStipend:        rec.RatingStipend,
		ReachedOutreach:      rec.ReachedOutreach,
		Remarks:              rec.Remarks,
		Version:              rec.Version,
	}
}

func (d companyDocument) record() models.CompanyRecord {
	return models.CompanyRecord{
		ID:                   d.ID.Hex(),
		Company:              d.Company,
		Location:             d.Location,
		BusinessDomain:       d.BusinessDomain,
		Tags:                 nonNilTags(d.Tags),
		Stipend:              d.Stipend,
		Projects:             nonNilProjects(d.Projects),
		RatingCompanyOverall: d.RatingCompanyOverall,
		RatingLocation:       d.RatingLocation,
		RatingStipend:        d.RatingStipend,
		ReachedOutreach:      d.ReachedOutreach,
		Remarks:              d.Remarks,
		Version:              d.Version,
	}
}

type MongoCompanyRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoCompanyRepo(client *mongo.Client, databaseName string) *MongoCompanyRepo {
	return &MongoCompanyRepo{
		client:     client,
		collection: client.Database(databaseName).Collection(companiesCollection),
	}
}

// NewMongo connects to uri, ensures the company index and returns a Database that disconnects on Close.
func NewMongo(ctx context.Context, uri, databaseName string) (Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return Database{}, fmt.Errorf("connecting to mongo: %w", err)
	}
	repo := NewMongoCompanyRepo(client, databaseName)
	if err := repo.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return Database{}, fmt.Errorf("pinging mongo: %w", err)
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return Database{}, err
	}
	return New(repo, client.Disconnect), nil
}

// EnsureIndexes creates the unique index on the company name.
func (r *MongoCompanyRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "company", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating company index: %w", err)
	}
	return nil
}

func (r *MongoCompanyRepo) FindAll(ctx context.Context) ([]models.CompanyRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errs.NewDatabaseError("find", "companies", err)
	}
	var docs []companyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errs.NewDatabaseError("decode", "companies", err)
	}

	records := make([]models.CompanyRecord, len(docs))
	for i, d := range docs {
		records[i] = d.record()
	}
	return records, nil
}

func (r *MongoCompanyRepo) FindNames(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "company", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "companies", err)
	}
	var docs []struct {
		Company string `bson:"company"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errs.NewDatabaseError("decode", "companies", err)
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Company
	}
	return names, nil
}

func (r *MongoCompanyRepo) FindByName(ctx context.Context, name string) (*models.CompanyRecord, error) {
	var doc companyDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "company", Value: name}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NewNotFound("company")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "company", err)
	}
	rec := doc.record()
	return &rec, nil
}

// ReplaceAll deletes then inserts without a transaction. A failed insert leaves the collection empty and
// concurrent readers may observe the gap.
func (r *MongoCompanyRepo) ReplaceAll(ctx context.Context, records []models.CompanyRecord) error {
	if _, err := r.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return errs.NewDatabaseError("delete", "companies", err)
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i, rec := range records {
		docs[i] = newCompanyDocument(rec)
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return errs.NewDatabaseError("insert", "companies", err)
	}
	return nil
}

func (r *MongoCompanyRepo) Update(ctx context.Context, name string, expectedVersion *int64, update models.CompanyUpdate) (bool, error) {
	filter := bson.D{{Key: "company", Value: name}}
	if expectedVersion != nil {
		filter = append(filter, bson.E{Key: "version", Value: *expectedVersion})
	}

	set := bson.D{}
	if update.RatingCompanyOverall.Set {
		set = append(set, bson.E{Key: "rating_company_overall", Value: update.RatingCompanyOverall.Value})
	}
	if update.RatingLocation.Set {
		set = append(set, bson.E{Key: "rating_location", Value: update.RatingLocation.Value})
	}
	if update.RatingStipend.Set {
		set = append(set, bson.E{Key: "rating_stipend", Value: update.RatingStipend.Value})
	}
	if update.ReachedOutreach.Set {
		set = append(set, bson.E{Key: "reached_outreach", Value: update.ReachedOutreach.Value})
	}
	if update.Remarks.Set {
		set = append(set, bson.E{Key: "remarks", Value: update.Remarks.Value})
	}
	if update.Projects.Set {
		set = append(set, bson.E{Key: "projects", Value: nonNilProjects(update.Projects.Value)})
	}

	doc := bson.D{{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}}}
	if len(set) > 0 {
		doc = append(doc, bson.E{Key: "$set", Value: set})
	}

	res, err := r.collection.UpdateOne(ctx, filter, doc)
	if err != nil {
		return false, errs.NewDatabaseError("update", "company", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoCompanyRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
