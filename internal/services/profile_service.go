package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/scms-platform/records-service/internal/events"
	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/validator"
)

type profileService struct {
	repo      repositories.Repository
	guard     *AccessGuard
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewProfileService(repo repositories.Repository, guard *AccessGuard, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ProfileService {
	return &profileService{
		repo:      repo,
		guard:     guard,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// EnsureProfile materializes the profile for identity exactly once. The
// read-check-create runs inside one transaction, so two concurrent callers
// for the same new identity end up with a single row and both observe it.
func (s *profileService) EnsureProfile(ctx context.Context, identity Identity, signup *SignupRequest) (*models.Profile, error) {
	if signup != nil {
		if err := s.validator.Validate(signup); err != nil {
			return nil, err
		}
	}

	// Fast path: the common case is an existing profile and needs no
	// transaction at all.
	if existing, err := s.repo.Profile().GetByID(ctx, identity.ID); err == nil {
		return existing, nil
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	var (
		profile *models.Profile
		created bool
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		existing, err := tx.Profile().GetByID(ctx, identity.ID)
		if err == nil {
			profile = existing
			return nil
		}
		if !repositories.IsNotFoundError(err) {
			return err
		}

		profile = s.buildProfile(identity, signup)
		if err := tx.Profile().Create(ctx, profile); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		// A concurrent caller may have committed the row first; their result
		// is ours too.
		if repositories.IsDuplicateError(err) || repositories.IsConflictError(err) {
			existing, getErr := s.repo.Profile().GetByID(ctx, identity.ID)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	if created {
		s.logger.Info("Profile created", "profile_id", profile.ID, "role", profile.Role)
		publishEvent(ctx, s.publisher, s.logger, events.EventProfileCreated, events.ProfileCreatedData{
			ProfileID: profile.ID,
			Email:     profile.Email,
			Role:      string(profile.Role),
		})
	}

	return profile, nil
}

// buildProfile derives the initial profile. Without signup data the role
// falls back to an email-substring heuristic ("admin"/"lecturer"); this is a
// compatibility default only and is never consulted for authorization, which
// always uses the stored role.
func (s *profileService) buildProfile(identity Identity, signup *SignupRequest) *models.Profile {
	role := models.RoleStudent
	displayName := emailLocalPart(identity.Email)

	profile := &models.Profile{
		ID:          identity.ID,
		Email:       identity.Email,
		DisplayName: displayName,
	}

	if signup != nil {
		role = signup.Role
		if signup.FullName != "" {
			profile.DisplayName = signup.FullName
		}
		if role == models.RoleStudent {
			profile.Program = strPtr(signup.Program)
			profile.StudentID = strPtr(signup.StudentID)
		}
	} else {
		switch {
		case strings.Contains(identity.Email, "admin"):
			role = models.RoleAdmin
		case strings.Contains(identity.Email, "lecturer"):
			role = models.RoleLecturer
		}
		if role == models.RoleStudent {
			profile.Program = strPtr("")
			profile.StudentID = strPtr("")
		}
	}

	profile.Role = role
	if role == models.RoleStudent && profile.YearLabel == nil {
		profile.YearLabel = strPtr("1st Year")
	}

	return profile
}

func (s *profileService) GetByID(ctx context.Context, id string, callerID string) (*models.Profile, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.Profile().GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrProfileNotFound)
	}

	if err := s.guard.Authorize(ctx, caller, OpRead, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, id string, req *UpdateProfileRequest, callerID string) (*models.Profile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var profile *models.Profile
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		profile, err = tx.Profile().GetByID(ctx, id)
		if err != nil {
			return translateNotFound(err, ErrProfileNotFound)
		}

		if err := s.guard.Authorize(ctx, caller, OpUpdate, profile); err != nil {
			return err
		}

		if req.DisplayName != nil {
			profile.DisplayName = *req.DisplayName
		}
		// Student-only fields are ignored for other roles
		if profile.Role == models.RoleStudent {
			if req.Program != nil {
				profile.Program = req.Program
			}
			if req.StudentID != nil {
				profile.StudentID = req.StudentID
			}
			if req.YearLabel != nil {
				profile.YearLabel = req.YearLabel
			}
			if req.GPA != nil {
				profile.GPA = req.GPA
			}
		}

		return tx.Profile().Update(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", "profile_id", profile.ID, "updated_by", callerID)
	return profile, nil
}

func (s *profileService) List(ctx context.Context, filters repositories.ProfileFilters, callerID string) ([]*models.Profile, error) {
	caller, err := s.guard.CallerProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if caller.Role != models.RoleAdmin {
		return nil, NewPermissionError(callerID, "", "profile", "list", "insufficient role permissions")
	}

	return s.repo.Profile().List(ctx, filters)
}

// NewProfileID mints a profile identifier for identities that arrive without
// one (explicit signup through this service rather than the auth provider).
func NewProfileID() string {
	return uuid.New().String()
}
