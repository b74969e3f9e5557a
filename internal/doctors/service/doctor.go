package service

import (
	"context"
	"errors"
	"sync"

	doctorserrors "mediq/internal/doctors/errors"
	"mediq/internal/doctors/repository"
	"mediq/internal/doctors/validator"
	usersrepo "mediq/internal/users/repository"
	"mediq/pkg/config"
	apperrors "mediq/pkg/errors"
	"mediq/pkg/model"
	"mediq/pkg/sanitizer"
)

type DoctorService interface {
	Create(ctx context.Context, userID string, doctor *model.Doctor) error
	GetByID(ctx context.Context, id string) (*model.Doctor, error)
	GetByUserID(ctx context.Context, userID string) (*model.Doctor, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Doctor, int64, error)
	Update(ctx context.Context, id string, updates *model.DoctorUpdate) (*model.Doctor, error)
	Delete(ctx context.Context, id string) error
}

type doctorService struct {
	repo      repository.DoctorRepository
	users     usersrepo.UserRepository
	validator *validator.DoctorValidator
	cfg       *config.Config
}

func NewDoctorService(
	repo repository.DoctorRepository,
	users usersrepo.UserRepository,
	validator *validator.DoctorValidator,
	cfg *config.Config,
) DoctorService {
	return &doctorService{
		repo:      repo,
		users:     users,
		validator: validator,
		cfg:       cfg,
	}
}

// Create stores the profile for the calling account and then grants the
// doctor role. Profile first: a failed role grant leaves a retryable
// state, the reverse order would leave a role without a profile.
func (s *doctorService) Create(ctx context.Context, userID string, doctor *model.Doctor) error {
	doctor.UserID = userID
	s.sanitize(doctor)

	if err := s.validator.Validate(doctor); err != nil {
		s.cfg.Log.Warn("Doctor validation failed",
			"user_id", userID,
			"error", err,
		)
		return apperrors.Validation("Doctor validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return apperrors.Conflict("Doctor already exist, cannot recreate it")
	} else if !errors.Is(err, doctorserrors.ErrNotFound) {
		return apperrors.Internal("Failed to check for existing doctor profile", err)
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		// Unique user_id index closes the check-then-create race.
		if errors.Is(err, doctorserrors.ErrDuplicateProfile) {
			return apperrors.Conflict("Doctor already exist, cannot recreate it")
		}
		s.cfg.Log.Error("Failed to create doctor profile",
			"user_id", userID,
			"error", err,
		)
		return apperrors.Internal("Failed to create doctor profile", err)
	}

	if err := s.users.AppendRole(ctx, userID, model.RoleDoctor); err != nil {
		s.cfg.Log.Error("Failed to grant doctor role after profile creation",
			"user_id", userID,
			"doctor_id", doctor.ID,
			"error", err,
		)
		return apperrors.Internal("Failed to grant doctor role", err)
	}

	s.cfg.Log.Info("Doctor profile created",
		"doctor_id", doctor.ID,
		"user_id", userID,
	)
	return nil
}

func (s *doctorService) GetByID(ctx context.Context, id string) (*model.Doctor, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Doctor ID cannot be empty")
	}

	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Doctor", id)
		}
		if errors.Is(err, doctorserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid doctor ID format")
		}
		s.cfg.Log.Error("Failed to get doctor by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve doctor", err)
	}

	return doctor, nil
}

func (s *doctorService) GetByUserID(ctx context.Context, userID string) (*model.Doctor, error) {
	doctor, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Doctor profile not found for user")
		}
		s.cfg.Log.Error("Failed to get doctor by user ID",
			"user_id", userID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve doctor", err)
	}

	return doctor, nil
}

func (s *doctorService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Doctor, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var doctors []*model.Doctor
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count doctors", "error", err)
			errCount = apperrors.Internal("Failed to count doctors", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		doctors, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list doctors",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve doctors", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return doctors, count, nil
}

func (s *doctorService) Update(ctx context.Context, id string, updates *model.DoctorUpdate) (*model.Doctor, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := s.merge(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Doctor validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Doctor", id)
		}
		s.cfg.Log.Error("Failed to update doctor",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update doctor", err)
	}

	s.cfg.Log.Info("Doctor profile updated", "doctor_id", id)
	return merged, nil
}

func (s *doctorService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Doctor ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Doctor", id)
		}
		if errors.Is(err, doctorserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid doctor ID format")
		}
		s.cfg.Log.Error("Failed to delete doctor",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete doctor", err)
	}

	s.cfg.Log.Info("Doctor profile deleted", "doctor_id", id)
	return nil
}

func (s *doctorService) sanitize(doctor *model.Doctor) {
	doctor.FirstName = sanitizer.NormalizeName(doctor.FirstName)
	doctor.LastName = sanitizer.NormalizeName(doctor.LastName)
	doctor.Speciality = sanitizer.TrimAndNormalize(doctor.Speciality)
	doctor.Bio = sanitizer.NormalizeText(doctor.Bio)
}

func (s *doctorService) merge(existing *model.Doctor, updates *model.DoctorUpdate) *model.Doctor {
	merged := *existing

	if updates.FirstName != "" {
		merged.FirstName = sanitizer.NormalizeName(updates.FirstName)
	}
	if updates.LastName != "" {
		merged.LastName = sanitizer.NormalizeName(updates.LastName)
	}
	if updates.Gender != "" {
		merged.Gender = updates.Gender
	}
	if updates.Experience != nil {
		merged.Experience = *updates.Experience
	}
	if updates.Speciality != "" {
		merged.Speciality = sanitizer.TrimAndNormalize(updates.Speciality)
	}
	if updates.Bio != "" {
		merged.Bio = sanitizer.NormalizeText(updates.Bio)
	}

	return &merged
}
