package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	appterrors "mediq/internal/appointments/errors"
	apptsrepo "mediq/internal/appointments/repository"
	bookingserrors "mediq/internal/bookings/errors"
	"mediq/internal/bookings/repository"
	"mediq/internal/bookings/validator"
	patientserrors "mediq/internal/patients/errors"
	patientsrepo "mediq/internal/patients/repository"
	"mediq/pkg/config"
	apperrors "mediq/pkg/errors"
	"mediq/pkg/events"
	"mediq/pkg/model"
	"mediq/pkg/sanitizer"
)

type BookingService interface {
	Create(ctx context.Context, caller *model.User, req *model.BookingCreateRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
}

type bookingService struct {
	repo         repository.BookingRepository
	appointments apptsrepo.AppointmentRepository
	patients     patientsrepo.PatientRepository
	validator    *validator.BookingValidator
	publisher    events.Publisher
	cfg          *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	appointments apptsrepo.AppointmentRepository,
	patients patientsrepo.PatientRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		appointments: appointments,
		patients:     patients,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
	}
}

// Create reserves an appointment for a patient. The appointment's
// conditional flip from open to booked is the only serialization point;
// the booking document is inserted after the slot is held, and the slot
// is released again if that insert fails.
func (s *bookingService) Create(ctx context.Context, caller *model.User, req *model.BookingCreateRequest) (*model.Booking, error) {
	req.ReasonForVisit = sanitizer.NormalizeText(req.ReasonForVisit)
	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	appt, err := s.appointments.FindByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) || errors.Is(err, appterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Failed to create booking as invalid appointment id provided")
		}
		s.cfg.Log.Error("Failed to resolve appointment for booking",
			"appointment_id", req.AppointmentID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve appointment", err)
	}

	patient, err := s.resolvePatient(ctx, caller, req.PatientID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByAppointmentID(ctx, appt.ID); err == nil {
		return nil, apperrors.Conflict("Booking already exist, cannot recreate it")
	} else if !errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check for existing booking", err)
	}

	if err := s.appointments.Reserve(ctx, appt.ID, patient.ID); err != nil {
		if errors.Is(err, appterrors.ErrSlotTaken) {
			return nil, apperrors.Conflict("Booking already exist, cannot recreate it")
		}
		s.cfg.Log.Error("Failed to reserve appointment",
			"appointment_id", appt.ID,
			"patient_id", patient.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to reserve appointment", err)
	}

	booking := &model.Booking{
		AppointmentID:  appt.ID,
		PatientID:      patient.ID,
		ReasonForVisit: req.ReasonForVisit,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		// The slot is held but the booking did not land; hand the slot
		// back before reporting failure.
		if releaseErr := s.appointments.Release(ctx, appt.ID); releaseErr != nil {
			s.cfg.Log.Error("Failed to release appointment after booking insert failed",
				"appointment_id", appt.ID,
				"error", releaseErr,
			)
		}
		if errors.Is(err, bookingserrors.ErrDuplicateBooking) {
			return nil, apperrors.Conflict("Booking already exist, cannot recreate it")
		}
		s.cfg.Log.Error("Failed to create booking",
			"appointment_id", appt.ID,
			"patient_id", patient.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.publish(ctx, events.Event{
		Type:          events.TypeBookingCreated,
		AppointmentID: appt.ID,
		BookingID:     booking.ID,
		DoctorID:      appt.DoctorID,
		PatientID:     patient.ID,
	})

	s.cfg.Log.Info("Booking created",
		"booking_id", booking.ID,
		"appointment_id", appt.ID,
		"patient_id", patient.ID,
	)
	return booking, nil
}

// resolvePatient picks the patient being booked for. An explicit
// patient_id is honoured only when it belongs to the caller or the
// caller is an admin; otherwise the caller's own profile is used.
func (s *bookingService) resolvePatient(ctx context.Context, caller *model.User, patientID string) (*model.Patient, error) {
	if patientID != "" {
		patient, err := s.patients.FindByID(ctx, patientID)
		if err != nil {
			if errors.Is(err, patientserrors.ErrNotFound) || errors.Is(err, patientserrors.ErrInvalidID) {
				return nil, apperrors.InvalidInput("Failed to create booking as invalid patient id provided")
			}
			s.cfg.Log.Error("Failed to resolve patient for booking",
				"patient_id", patientID,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to resolve patient", err)
		}
		if patient.UserID != caller.ID && !model.HasAnyRole(caller.Roles, model.RoleAdmin) {
			return nil, apperrors.Forbidden("You are not authorised")
		}
		return patient, nil
	}

	patient, err := s.patients.FindByUserID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, patientserrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("Failed to create booking as invalid patient id provided")
		}
		s.cfg.Log.Error("Failed to resolve caller patient profile",
			"user_id", caller.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve patient", err)
	}
	return patient, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindAll(sharedCtx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	updates.ReasonForVisit = sanitizer.NormalizeText(updates.ReasonForVisit)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	if updates.Attended != nil {
		merged.Attended = *updates.Attended
	}
	if updates.FeePaid != nil {
		merged.FeePaid = *updates.FeePaid
	}
	if updates.ReasonForVisit != "" {
		merged.ReasonForVisit = updates.ReasonForVisit
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking updated", "booking_id", id)
	return &merged, nil
}

// Delete cancels a booking. The appointment is released before the
// booking document is removed, so a crash in between leaves an open
// slot and a stale booking, never a permanently blocked slot.
func (s *bookingService) Delete(ctx context.Context, id string) error {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.NotFound(fmt.Sprintf("Failed to delete Booking as booking with id: %s does not exist", id))
		}
		return apperrors.Internal("Failed to check booking state", err)
	}

	if err := s.appointments.Release(ctx, booking.AppointmentID); err != nil {
		// A missing appointment means the slot is already gone; the
		// booking can still be cleaned up.
		if !errors.Is(err, appterrors.ErrNotFound) {
			s.cfg.Log.Error("Failed to release appointment for booking",
				"booking_id", id,
				"appointment_id", booking.AppointmentID,
				"error", err,
			)
			return apperrors.Internal("Failed to release appointment", err)
		}
		s.cfg.Log.Warn("Booking referenced a missing appointment",
			"booking_id", id,
			"appointment_id", booking.AppointmentID,
		)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFound(fmt.Sprintf("Failed to delete Booking as booking with id: %s does not exist", id))
		}
		s.cfg.Log.Error("Failed to delete booking",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.publish(ctx, events.Event{
		Type:          events.TypeBookingDeleted,
		AppointmentID: booking.AppointmentID,
		BookingID:     booking.ID,
		PatientID:     booking.PatientID,
	})

	s.cfg.Log.Info("Booking deleted",
		"booking_id", id,
		"appointment_id", booking.AppointmentID,
	)
	return nil
}

func (s *bookingService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}
