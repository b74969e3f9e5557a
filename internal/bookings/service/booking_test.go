package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	appterrors "mediq/internal/appointments/errors"
	bookingserrors "mediq/internal/bookings/errors"
	"mediq/internal/bookings/validator"
	patientserrors "mediq/internal/patients/errors"
	"mediq/pkg/config"
	apperrors "mediq/pkg/errors"
	"mediq/pkg/logger"
	"mediq/pkg/model"
)

const (
	testAppointmentID = "64b000000000000000000001"
	testPatientID     = "64d000000000000000000001"
	testUserID        = "64a000000000000000000001"
	testBookingID     = "64e000000000000000000001"
)

type mockBookingRepository struct {
	createFunc              func(ctx context.Context, booking *model.Booking) error
	findByIDFunc            func(ctx context.Context, id string) (*model.Booking, error)
	findByAppointmentIDFunc func(ctx context.Context, appointmentID string) (*model.Booking, error)
	findAllFunc             func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	countFunc               func(ctx context.Context, filter model.BookingFilter) (int64, error)
	updateFunc              func(ctx context.Context, id string, booking *model.Booking) error
	deleteFunc              func(ctx context.Context, id string) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = testBookingID
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
}

func (m *mockBookingRepository) FindByAppointmentID(ctx context.Context, appointmentID string) (*model.Booking, error) {
	if m.findByAppointmentIDFunc != nil {
		return m.findByAppointmentIDFunc(ctx, appointmentID)
	}
	return nil, fmt.Errorf("%w: appointment %s", bookingserrors.ErrNotFound, appointmentID)
}

func (m *mockBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, booking)
	}
	return nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockAppointmentRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Appointment, error)
	reserveFunc  func(ctx context.Context, id string, patientID string) error
	releaseFunc  func(ctx context.Context, id string) error
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return nil
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Appointment{ID: id, DoctorID: "64c000000000000000000001"}, nil
}

func (m *mockAppointmentRepository) FindBySlot(ctx context.Context, doctorID string, slot model.AppointmentSlot) (*model.Appointment, error) {
	return nil, fmt.Errorf("%w: doctor %s", appterrors.ErrNotFound, doctorID)
}

func (m *mockAppointmentRepository) FindAll(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *mockAppointmentRepository) Count(ctx context.Context, filter model.AppointmentFilter) (int64, error) {
	return 0, nil
}

func (m *mockAppointmentRepository) Update(ctx context.Context, id string, appt *model.Appointment) error {
	return nil
}

func (m *mockAppointmentRepository) Reserve(ctx context.Context, id string, patientID string) error {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, id, patientID)
	}
	return nil
}

func (m *mockAppointmentRepository) Release(ctx context.Context, id string) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, id)
	}
	return nil
}

func (m *mockAppointmentRepository) Delete(ctx context.Context, id string) error {
	return nil
}

type mockPatientRepository struct {
	findByIDFunc     func(ctx context.Context, id string) (*model.Patient, error)
	findByUserIDFunc func(ctx context.Context, userID string) (*model.Patient, error)
}

func (m *mockPatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return nil
}

func (m *mockPatientRepository) FindByID(ctx context.Context, id string) (*model.Patient, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Patient{ID: id, UserID: testUserID}, nil
}

func (m *mockPatientRepository) FindByUserID(ctx context.Context, userID string) (*model.Patient, error) {
	if m.findByUserIDFunc != nil {
		return m.findByUserIDFunc(ctx, userID)
	}
	return &model.Patient{ID: testPatientID, UserID: userID}, nil
}

func (m *mockPatientRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Patient, error) {
	return nil, nil
}

func (m *mockPatientRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockPatientRepository) Update(ctx context.Context, id string, patient *model.Patient) error {
	return nil
}

func (m *mockPatientRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   logger.LevelError,
		Format:  logger.FormatText,
		Service: "test",
	})
	return &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	}
}

func newTestService(bookings *mockBookingRepository, appts *mockAppointmentRepository, patients *mockPatientRepository) BookingService {
	cfg := testConfig()
	return NewBookingService(bookings, appts, patients, validator.NewBookingValidator(cfg.Log), nil, cfg)
}

func patientCaller() *model.User {
	return &model.User{ID: testUserID, Roles: []model.Role{model.RoleUser, model.RolePatient}}
}

func TestCreateInvalidAppointmentID(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "unknown id", err: fmt.Errorf("%w: %s", appterrors.ErrNotFound, testAppointmentID)},
		{name: "malformed id", err: fmt.Errorf("%w: not-a-hex-id", appterrors.ErrInvalidID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appts := &mockAppointmentRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
					return nil, tt.err
				},
			}
			svc := newTestService(&mockBookingRepository{}, appts, &mockPatientRepository{})

			_, err := svc.Create(context.Background(), patientCaller(), &model.BookingCreateRequest{
				AppointmentID: testAppointmentID,
			})
			appErr := apperrors.AsAppError(err)
			if appErr.StatusCode() != 400 {
				t.Errorf("Expected status 400, got %d", appErr.StatusCode())
			}
			if appErr.Message != "Failed to create booking as invalid appointment id provided" {
				t.Errorf("Unexpected message: %s", appErr.Message)
			}
		})
	}
}

func TestCreateWithoutPatientProfile(t *testing.T) {
	patients := &mockPatientRepository{
		findByUserIDFunc: func(ctx context.Context, userID string) (*model.Patient, error) {
			return nil, fmt.Errorf("%w: user %s", patientserrors.ErrNotFound, userID)
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockAppointmentRepository{}, patients)

	_, err := svc.Create(context.Background(), patientCaller(), &model.BookingCreateRequest{
		AppointmentID: testAppointmentID,
	})
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 400 {
		t.Errorf("Expected status 400, got %d", appErr.StatusCode())
	}
	if appErr.Message != "Failed to create booking as invalid patient id provided" {
		t.Errorf("Unexpected message: %s", appErr.Message)
	}
}

func TestCreateForeignPatientForbidden(t *testing.T) {
	patients := &mockPatientRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Patient, error) {
			return &model.Patient{ID: id, UserID: "64a000000000000000000099"}, nil
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockAppointmentRepository{}, patients)

	_, err := svc.Create(context.Background(), patientCaller(), &model.BookingCreateRequest{
		AppointmentID: testAppointmentID,
		PatientID:     testPatientID,
	})
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 403 {
		t.Errorf("Expected status 403, got %d", appErr.StatusCode())
	}
	if appErr.Message != "You are not authorised" {
		t.Errorf("Unexpected message: %s", appErr.Message)
	}
}

func TestCreateForeignPatientAllowedForAdmin(t *testing.T) {
	patients := &mockPatientRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Patient, error) {
			return &model.Patient{ID: id, UserID: "64a000000000000000000099"}, nil
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockAppointmentRepository{}, patients)

	admin := &model.User{ID: testUserID, Roles: []model.Role{model.RolePatient, model.RoleAdmin}}
	booking, err := svc.Create(context.Background(), admin, &model.BookingCreateRequest{
		AppointmentID: testAppointmentID,
		PatientID:     testPatientID,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if booking.PatientID != testPatientID {
		t.Errorf("Expected patient %s, got %s", testPatientID, booking.PatientID)
	}
}

func TestCreateExistingBooking(t *testing.T) {
	reserved := false
	bookings := &mockBookingRepository{
		findByAppointmentIDFunc: func(ctx context.Context, appointmentID string) (*model.Booking, error) {
			return &model.Booking{ID: testBookingID, AppointmentID: appointmentID}, nil
		},
	}
	appts := &mockAppointmentRepository{
		reserveFunc: func(ctx context.Context, id string, patientID string) error {
			reserved = true
			return nil
		},
	}
	svc := newTestService(bookings, appts, &mockPatientRepository{})

	_, err := svc.Create(context.Background(), patientCaller(), &model.BookingCreateRequest{
		AppointmentID: testAppointmentID,
	})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("Expected CONFLICT, got %s", appErr.Code)
	}
	if appErr.Message != "Booking already exist, cannot recreate it" {
		t.Errorf("Unexpected message: %s", appErr.Message)
	}
	if reserved {
		t.Error("Expected no reserve attempt when booking already exists")
	}
}

func TestCreateSlotTakenConcurrently(t *testing.T) {
	appts := &mockAppointmentRepository{
		reserveFunc: func(ctx context.Context, id string, patientID string) error {
			return fmt.Errorf("%w: %s", appterrors.ErrSlotTaken, id)
		},
	}
	svc := newTestService(&mockBookingRepository{}, appts, &mockPatientRepository{})

	_, err := svc.Create(context.Background(), patientCaller(), &model.BookingCreateRequest{
		AppointmentID: testAppointmentID,
	})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("Expected CONFLICT, got %s", appErr.Code)
	}
	if appErr.Message != "Booking already exist, cannot recreate it" {
		t.Errorf("Unexpected message: %s", appErr.Message)
	}
}

func TestCreateReleasesSlotWhenInsertFails(t *testing.T) {
	released := false
	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			return errors.New("write failed")
		},
	}
	appts := &mockAppointmentRepository{
		releaseFunc: func(ctx context.Context, id string) error {
			released = true
			return nil
		},
	}
	svc := newTestService(bookings, appts, &mockPatientRepository{})

	_, err := svc.Create(context.Background(), patientCaller(), &model.BookingCreateRequest{
		AppointmentID: testAppointmentID,
	})
	if err == nil {
		t.Fatal("Expected error when booking insert fails")
	}
	if !released {
		t.Error("Expected reserved appointment to be released")
	}
}

func TestCreateBooksOpenSlot(t *testing.T) {
	var reservedPatient string
	appts := &mockAppointmentRepository{
		reserveFunc: func(ctx context.Context, id string, patientID string) error {
			reservedPatient = patientID
			return nil
		},
	}
	svc := newTestService(&mockBookingRepository{}, appts, &mockPatientRepository{})

	booking, err := svc.Create(context.Background(), patientCaller(), &model.BookingCreateRequest{
		AppointmentID:  testAppointmentID,
		ReasonForVisit: "Annual checkup",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if booking.ID != testBookingID {
		t.Errorf("Expected booking id %s, got %s", testBookingID, booking.ID)
	}
	if booking.PatientID != testPatientID {
		t.Errorf("Expected patient %s, got %s", testPatientID, booking.PatientID)
	}
	if reservedPatient != testPatientID {
		t.Errorf("Expected slot reserved for %s, got %s", testPatientID, reservedPatient)
	}
	if booking.ReasonForVisit != "Annual checkup" {
		t.Errorf("Unexpected reason for visit: %s", booking.ReasonForVisit)
	}
}

func TestDeleteMissingBooking(t *testing.T) {
	for _, id := range []string{testBookingID, "not-a-hex-id"} {
		bookings := &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				if id == "not-a-hex-id" {
					return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
				}
				return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
			},
		}
		svc := newTestService(bookings, &mockAppointmentRepository{}, &mockPatientRepository{})

		err := svc.Delete(context.Background(), id)
		appErr := apperrors.AsAppError(err)
		if appErr.StatusCode() != 404 {
			t.Errorf("id %s: expected status 404, got %d", id, appErr.StatusCode())
		}
		expected := fmt.Sprintf("Failed to delete Booking as booking with id: %s does not exist", id)
		if appErr.Message != expected {
			t.Errorf("id %s: expected message %q, got %q", id, expected, appErr.Message)
		}
	}
}

func TestDeleteReleasesBeforeRemoving(t *testing.T) {
	var order []string
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, AppointmentID: testAppointmentID, PatientID: testPatientID}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			order = append(order, "delete")
			return nil
		},
	}
	appts := &mockAppointmentRepository{
		releaseFunc: func(ctx context.Context, id string) error {
			order = append(order, "release")
			return nil
		},
	}
	svc := newTestService(bookings, appts, &mockPatientRepository{})

	if err := svc.Delete(context.Background(), testBookingID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "release" || order[1] != "delete" {
		t.Errorf("Expected release then delete, got %v", order)
	}
}

func TestDeleteAbortsWhenReleaseFails(t *testing.T) {
	deleted := false
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, AppointmentID: testAppointmentID}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	appts := &mockAppointmentRepository{
		releaseFunc: func(ctx context.Context, id string) error {
			return errors.New("write failed")
		},
	}
	svc := newTestService(bookings, appts, &mockPatientRepository{})

	err := svc.Delete(context.Background(), testBookingID)
	if err == nil {
		t.Fatal("Expected error when release fails")
	}
	if deleted {
		t.Error("Expected booking to survive a failed release")
	}
}

func TestDeleteToleratesMissingAppointment(t *testing.T) {
	deleted := false
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, AppointmentID: testAppointmentID}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	appts := &mockAppointmentRepository{
		releaseFunc: func(ctx context.Context, id string) error {
			return fmt.Errorf("%w: %s", appterrors.ErrNotFound, id)
		},
	}
	svc := newTestService(bookings, appts, &mockPatientRepository{})

	if err := svc.Delete(context.Background(), testBookingID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !deleted {
		t.Error("Expected booking to be removed despite missing appointment")
	}
}
