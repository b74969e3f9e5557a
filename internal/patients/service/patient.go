package service

import (
	"context"
	"errors"
	"sync"

	patientserrors "mediq/internal/patients/errors"
	"mediq/internal/patients/repository"
	"mediq/internal/patients/validator"
	usersrepo "mediq/internal/users/repository"
	"mediq/pkg/config"
	apperrors "mediq/pkg/errors"
	"mediq/pkg/model"
	"mediq/pkg/sanitizer"
)

type PatientService interface {
	Create(ctx context.Context, userID string, patient *model.Patient) error
	GetByID(ctx context.Context, id string) (*model.Patient, error)
	GetByUserID(ctx context.Context, userID string) (*model.Patient, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Patient, int64, error)
	Update(ctx context.Context, id string, updates *model.PatientUpdate) (*model.Patient, error)
	Delete(ctx context.Context, id string) error
}

type patientService struct {
	repo      repository.PatientRepository
	users     usersrepo.UserRepository
	validator *validator.PatientValidator
	cfg       *config.Config
}

func NewPatientService(
	repo repository.PatientRepository,
	users usersrepo.UserRepository,
	validator *validator.PatientValidator,
	cfg *config.Config,
) PatientService {
	return &patientService{
		repo:      repo,
		users:     users,
		validator: validator,
		cfg:       cfg,
	}
}

// Create stores the profile first, then grants the patient role. Same
// compensating order as doctor creation.
func (s *patientService) Create(ctx context.Context, userID string, patient *model.Patient) error {
	patient.UserID = userID
	s.sanitize(patient)

	if err := s.validator.Validate(patient); err != nil {
		s.cfg.Log.Warn("Patient validation failed",
			"user_id", userID,
			"error", err,
		)
		return apperrors.Validation("Patient validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return apperrors.Conflict("Patient already exist, cannot recreate it")
	} else if !errors.Is(err, patientserrors.ErrNotFound) {
		return apperrors.Internal("Failed to check for existing patient profile", err)
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, patientserrors.ErrDuplicateProfile) {
			return apperrors.Conflict("Patient already exist, cannot recreate it")
		}
		s.cfg.Log.Error("Failed to create patient profile",
			"user_id", userID,
			"error", err,
		)
		return apperrors.Internal("Failed to create patient profile", err)
	}

	if err := s.users.AppendRole(ctx, userID, model.RolePatient); err != nil {
		s.cfg.Log.Error("Failed to grant patient role after profile creation",
			"user_id", userID,
			"patient_id", patient.ID,
			"error", err,
		)
		return apperrors.Internal("Failed to grant patient role", err)
	}

	s.cfg.Log.Info("Patient profile created",
		"patient_id", patient.ID,
		"user_id", userID,
	)
	return nil
}

func (s *patientService) GetByID(ctx context.Context, id string) (*model.Patient, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Patient ID cannot be empty")
	}

	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, patientserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Patient", id)
		}
		if errors.Is(err, patientserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid patient ID format")
		}
		s.cfg.Log.Error("Failed to get patient by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve patient", err)
	}

	return patient, nil
}

func (s *patientService) GetByUserID(ctx context.Context, userID string) (*model.Patient, error) {
	patient, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, patientserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Patient profile not found for user")
		}
		s.cfg.Log.Error("Failed to get patient by user ID",
			"user_id", userID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve patient", err)
	}

	return patient, nil
}

func (s *patientService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Patient, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var patients []*model.Patient
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count patients", "error", err)
			errCount = apperrors.Internal("Failed to count patients", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		patients, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list patients",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve patients", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return patients, count, nil
}

func (s *patientService) Update(ctx context.Context, id string, updates *model.PatientUpdate) (*model.Patient, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := s.merge(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Patient validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, patientserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Patient", id)
		}
		s.cfg.Log.Error("Failed to update patient",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update patient", err)
	}

	s.cfg.Log.Info("Patient profile updated", "patient_id", id)
	return merged, nil
}

func (s *patientService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Patient ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, patientserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Patient", id)
		}
		if errors.Is(err, patientserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid patient ID format")
		}
		s.cfg.Log.Error("Failed to delete patient",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete patient", err)
	}

	s.cfg.Log.Info("Patient profile deleted", "patient_id", id)
	return nil
}

func (s *patientService) sanitize(patient *model.Patient) {
	patient.FirstName = sanitizer.NormalizeName(patient.FirstName)
	patient.LastName = sanitizer.NormalizeName(patient.LastName)
	patient.ContactNumber = sanitizer.NormalizePhone(patient.ContactNumber)
	patient.Address.StreetName = sanitizer.TrimAndNormalize(patient.Address.StreetName)
	patient.Address.Suburb = sanitizer.TrimAndNormalize(patient.Address.Suburb)
	patient.Address.State = sanitizer.TrimAndNormalize(patient.Address.State)
}

func (s *patientService) merge(existing *model.Patient, updates *model.PatientUpdate) *model.Patient {
	merged := *existing

	if updates.FirstName != "" {
		merged.FirstName = sanitizer.NormalizeName(updates.FirstName)
	}
	if updates.LastName != "" {
		merged.LastName = sanitizer.NormalizeName(updates.LastName)
	}
	if updates.ContactNumber != "" {
		merged.ContactNumber = sanitizer.NormalizePhone(updates.ContactNumber)
	}
	if updates.Address != nil {
		merged.Address = *updates.Address
		merged.Address.StreetName = sanitizer.TrimAndNormalize(merged.Address.StreetName)
		merged.Address.Suburb = sanitizer.TrimAndNormalize(merged.Address.Suburb)
		merged.Address.State = sanitizer.TrimAndNormalize(merged.Address.State)
	}
	if updates.Gender != "" {
		merged.Gender = updates.Gender
	}
	if updates.Age != nil {
		merged.Age = updates.Age
	}

	return &merged
}
