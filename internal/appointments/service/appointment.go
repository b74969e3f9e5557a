package service

import (
	"context"
	"errors"
	"sync"
	"time"

	appterrors "mediq/internal/appointments/errors"
	"mediq/internal/appointments/repository"
	"mediq/internal/appointments/validator"
	doctorserrors "mediq/internal/doctors/errors"
	doctorsrepo "mediq/internal/doctors/repository"
	"mediq/pkg/config"
	apperrors "mediq/pkg/errors"
	"mediq/pkg/events"
	"mediq/pkg/model"
)

type AppointmentService interface {
	Create(ctx context.Context, userID string, req *model.AppointmentCreateRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	GetAll(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, id string, updates *model.AppointmentUpdate) (*model.Appointment, error)
	Delete(ctx context.Context, id string) error
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	doctors   doctorsrepo.DoctorRepository
	validator *validator.AppointmentValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	doctors doctorsrepo.DoctorRepository,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		doctors:   doctors,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create publishes an open slot for the doctor profile tied to the
// calling account.
func (s *appointmentService) Create(ctx context.Context, userID string, req *model.AppointmentCreateRequest) (*model.Appointment, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, apperrors.Validation("Appointment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	now := time.Now()
	if req.StartTime.Before(now) {
		return nil, apperrors.InvalidInput("Appointment start date is in past.")
	}
	if req.EndTime.Before(now) {
		return nil, apperrors.InvalidInput("Appointment end date is in past.")
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperrors.InvalidInput("Appointment start time should be earlier than end time and start and end time cannot be equal.")
	}

	doctor, err := s.doctors.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("Cannot create appointment as failed to find doctor associated with this request.")
		}
		s.cfg.Log.Error("Failed to resolve doctor for appointment",
			"user_id", userID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve doctor", err)
	}

	slot := model.AppointmentSlot{
		StartTime: req.StartTime.UTC().Truncate(time.Millisecond),
		EndTime:   req.EndTime.UTC().Truncate(time.Millisecond),
	}

	if _, err := s.repo.FindBySlot(ctx, doctor.ID, slot); err == nil {
		return nil, apperrors.Conflict("Appointment already exist, cannot recreate it")
	} else if !errors.Is(err, appterrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check for existing appointment", err)
	}

	appt := &model.Appointment{
		DoctorID: doctor.ID,
		Slot:     slot,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		// Unique (doctor_id, slot) index closes the check-then-create race.
		if errors.Is(err, appterrors.ErrDuplicateSlot) {
			return nil, apperrors.Conflict("Appointment already exist, cannot recreate it")
		}
		s.cfg.Log.Error("Failed to create appointment",
			"doctor_id", doctor.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create appointment", err)
	}

	s.publish(ctx, events.Event{
		Type:          events.TypeAppointmentCreated,
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
	})

	s.cfg.Log.Info("Appointment created",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"start_time", appt.Slot.StartTime,
		"end_time", appt.Slot.EndTime,
	)
	return appt, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		s.cfg.Log.Error("Failed to get appointment by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}

	return appt, nil
}

func (s *appointmentService) GetAll(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	if filter.FromTime != nil && filter.ToTime != nil && filter.ToTime.Before(*filter.FromTime) {
		return nil, 0, apperrors.InvalidInput("toTime cannot be before fromTime")
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var appts []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", err)
			errCount = apperrors.Internal("Failed to count appointments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		appts, err = s.repo.FindAll(sharedCtx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list appointments",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve appointments", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return appts, count, nil
}

func (s *appointmentService) Update(ctx context.Context, id string, updates *model.AppointmentUpdate) (*model.Appointment, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	if updates.Booked != nil {
		merged.Booked = *updates.Booked
	}
	if updates.StartTime != nil {
		merged.Slot.StartTime = updates.StartTime.UTC().Truncate(time.Millisecond)
	}
	if updates.EndTime != nil {
		merged.Slot.EndTime = updates.EndTime.UTC().Truncate(time.Millisecond)
	}

	if !merged.Slot.StartTime.Before(merged.Slot.EndTime) {
		return nil, apperrors.InvalidInput("Appointment start time should be earlier than end time and start and end time cannot be equal.")
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		s.cfg.Log.Error("Failed to update appointment",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update appointment", err)
	}

	s.cfg.Log.Info("Appointment updated", "appointment_id", id)
	return &merged, nil
}

// Delete removes an open slot. Reserved slots must be released through
// their booking first.
func (s *appointmentService) Delete(ctx context.Context, id string) error {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) || errors.Is(err, appterrors.ErrInvalidID) {
			return apperrors.NotFound("Delete Appointment failed as appointment does not exist")
		}
		return apperrors.Internal("Failed to check appointment state", err)
	}

	if appt.Booked {
		return apperrors.InvalidInput("Delete Appointment failed as it is already booked")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return apperrors.NotFound("Delete Appointment failed as appointment does not exist")
		}
		s.cfg.Log.Error("Failed to delete appointment",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete appointment", err)
	}

	s.publish(ctx, events.Event{
		Type:          events.TypeAppointmentDeleted,
		AppointmentID: id,
		DoctorID:      appt.DoctorID,
	})

	s.cfg.Log.Info("Appointment deleted", "appointment_id", id)
	return nil
}

func (s *appointmentService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"event_type", event.Type,
			"appointment_id", event.AppointmentID,
			"error", err,
		)
	}
}
