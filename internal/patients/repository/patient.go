package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	patientserrors "mediq/internal/patients/errors"
	"mediq/pkg/config"
	"mediq/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "patients"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	FindByID(ctx context.Context, id string) (*model.Patient, error)
	FindByUserID(ctx context.Context, userID string) (*model.Patient, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Patient, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, patient *model.Patient) error
	Delete(ctx context.Context, id string) error
}

type mongoPatientRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPatientRepository(cfg *config.Config) PatientRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPatientRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPatientRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	patient.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, patient)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", patientserrors.ErrDuplicateProfile, patient.UserID)
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		patient.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPatientRepository) FindByID(ctx context.Context, id string) (*model.Patient, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", patientserrors.ErrInvalidID, id)
	}

	var patient model.Patient
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&patient)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", patientserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}

	return &patient, nil
}

func (r *mongoPatientRepository) FindByUserID(ctx context.Context, userID string) (*model.Patient, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var patient model.Patient
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&patient)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", patientserrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find patient by user: %w", err)
	}

	return &patient, nil
}

func (r *mongoPatientRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Patient, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer cursor.Close(ctx)

	var patients []*model.Patient
	if err = cursor.All(ctx, &patients); err != nil {
		return nil, fmt.Errorf("failed to decode patients: %w", err)
	}
	return patients, nil
}

func (r *mongoPatientRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}

func (r *mongoPatientRepository) Update(ctx context.Context, id string, patient *model.Patient) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", patientserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"first_name":     patient.FirstName,
			"last_name":      patient.LastName,
			"contact_number": patient.ContactNumber,
			"address":        patient.Address,
			"gender":         patient.Gender,
			"age":            patient.Age,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", patientserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoPatientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", patientserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", patientserrors.ErrNotFound, id)
	}
	return nil
}
