package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appterrors "mediq/internal/appointments/errors"
	"mediq/pkg/config"
	"mediq/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "appointments"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindBySlot(ctx context.Context, doctorID string, slot model.AppointmentSlot) (*model.Appointment, error)
	FindAll(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error)
	Count(ctx context.Context, filter model.AppointmentFilter) (int64, error)
	Update(ctx context.Context, id string, appt *model.Appointment) error
	Reserve(ctx context.Context, id string, patientID string) error
	Release(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	appt.Booked = false
	appt.BookedBy = ""
	appt.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, appt)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: doctor %s", appterrors.ErrDuplicateSlot, appt.DoctorID)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	var appt model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", appterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appt, nil
}

func (r *mongoAppointmentRepository) FindBySlot(ctx context.Context, doctorID string, slot model.AppointmentSlot) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"doctor_id":                  doctorID,
		"appointment_slot.start_time": slot.StartTime,
		"appointment_slot.end_time":   slot.EndTime,
	}

	var appt model.Appointment
	err := r.collection.FindOne(ctx, filter).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: doctor %s", appterrors.ErrNotFound, doctorID)
		}
		return nil, fmt.Errorf("failed to find appointment by slot: %w", err)
	}

	return &appt, nil
}

func buildListFilter(filter model.AppointmentFilter) bson.M {
	query := bson.M{}

	if filter.DoctorID != "" {
		query["doctor_id"] = filter.DoctorID
	}
	if filter.Booked != nil {
		query["booked"] = *filter.Booked
	}

	slotRange := bson.M{}
	if filter.FromTime != nil {
		slotRange["$gte"] = *filter.FromTime
	}
	if filter.ToTime != nil {
		slotRange["$lte"] = *filter.ToTime
	}
	if len(slotRange) > 0 {
		query["appointment_slot.start_time"] = slotRange
	}

	return query
}

func (r *mongoAppointmentRepository) FindAll(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "appointment_slot.start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildListFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, filter model.AppointmentFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, id string, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"appointment_slot": appt.Slot,
			"booked":           appt.Booked,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", appterrors.ErrNotFound, id)
	}
	return nil
}

// Reserve flips an open slot to booked in one conditional update. The
// {_id, booked: false} filter is the serialization point for concurrent
// bookings: exactly one caller sees a modified document.
func (r *mongoAppointmentRepository) Reserve(ctx context.Context, id string, patientID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "booked": false}
	update := bson.M{"$set": bson.M{"booked": true, "booked_by": patientID}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve appointment: %w", err)
	}
	if result.ModifiedCount == 0 {
		return fmt.Errorf("%w: %s", appterrors.ErrSlotTaken, id)
	}
	return nil
}

func (r *mongoAppointmentRepository) Release(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set":   bson.M{"booked": false},
		"$unset": bson.M{"booked_by": ""},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to release appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", appterrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoAppointmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", appterrors.ErrNotFound, id)
	}
	return nil
}
