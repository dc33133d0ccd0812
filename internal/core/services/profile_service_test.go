package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *domain.ProfileDescriptor)
		problem string
	}{
		{"age too low", func(p *domain.ProfileDescriptor) { p.Age = 0 }, "age must be between 1 and 120"},
		{"height too high", func(p *domain.ProfileDescriptor) { p.HeightCM = 301 }, "height_cm must be between 50 and 300"},
		{"weight too low", func(p *domain.ProfileDescriptor) { p.WeightKG = 5 }, "weight_kg must be between 10 and 500"},
		{"missing condition", func(p *domain.ProfileDescriptor) { p.DiseaseCondition = " " }, "diseaseCondition is required"},
		{"bad preference", func(p *domain.ProfileDescriptor) { p.MealPreference = "Vegan" }, "mealPreference must be one of"},
		{"bad activity", func(p *domain.ProfileDescriptor) { p.ActivityLevel = "Extreme" }, "activityLevel must be one of"},
		{"bad goal", func(p *domain.ProfileDescriptor) { p.HealthGoal = "Bulk" }, "healthGoal must be one of"},
		{"bad blood pressure", func(p *domain.ProfileDescriptor) { p.BloodPressure = "120-80" }, "bloodPressure must be in format like 120/80"},
		{"bad blood group", func(p *domain.ProfileDescriptor) { p.BloodGroup = "C+" }, "bloodGroup must be one of"},
		{"long summary", func(p *domain.ProfileDescriptor) { p.MedicalSummary = strings.Repeat("a", 1001) }, "medicalSummary cannot exceed 1000 characters"},
		{"long allergy", func(p *domain.ProfileDescriptor) { p.Allergies = []string{strings.Repeat("a", 101)} }, "each allergy cannot exceed 100 characters"},
		{"long city", func(p *domain.ProfileDescriptor) { p.Location.City = strings.Repeat("a", 101) }, "location city cannot exceed 100 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := testProfile()
			tt.mutate(&profile)

			err := services.ValidateProfile(profile)

			var validationErr *services.ProfileValidationError
			require.True(t, errors.As(err, &validationErr))
			require.Len(t, validationErr.Problems, 1)
			assert.Contains(t, validationErr.Problems[0], tt.problem)
		})
	}
}

func TestValidateProfile_Valid(t *testing.T) {
	profile := testProfile()
	profile.BloodPressure = "120/80"
	profile.BloodGroup = "AB-"
	assert.NoError(t, services.ValidateProfile(profile))
}

func TestValidateProfile_CollectsAllProblems(t *testing.T) {
	err := services.ValidateProfile(domain.ProfileDescriptor{})

	var validationErr *services.ProfileValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Len(t, validationErr.Problems, 7)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid profile: age must be between 1 and 120; "))
}

func TestProfileService_SaveProfile_Create(t *testing.T) {
	profiles := new(MockProfileRepository)
	accounts := new(MockAccountRepository)
	service := services.NewProfileService(profiles, accounts)
	ctx := context.Background()
	patientID := uuid.New()

	descriptor := testProfile()
	descriptor.DiseaseCondition = "  Diabetes  "
	descriptor.Allergies = []string{"peanuts", " ", ""}

	accounts.On("GetAccount", ctx, patientID).Return(&domain.Account{ID: patientID, Role: domain.RolePatient}, nil)
	profiles.On("GetProfile", ctx, patientID).Return(nil, domain.ErrProfileNotFound)
	profiles.On("UpsertProfile", ctx, mock.MatchedBy(func(p *domain.PatientProfile) bool {
		return p.PatientID == patientID && p.Descriptor.DiseaseCondition == "Diabetes"
	})).Return(nil)

	profile, err := service.SaveProfile(ctx, patientID, descriptor)

	require.NoError(t, err)
	assert.Equal(t, []string{"peanuts"}, profile.Descriptor.Allergies)
	assert.Equal(t, profile.CreatedAt, profile.UpdatedAt)
	profiles.AssertExpectations(t)
}

func TestProfileService_SaveProfile_UpdateKeepsCreatedAt(t *testing.T) {
	profiles := new(MockProfileRepository)
	accounts := new(MockAccountRepository)
	service := services.NewProfileService(profiles, accounts)
	ctx := context.Background()
	patientID := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	accounts.On("GetAccount", ctx, patientID).Return(&domain.Account{ID: patientID, Role: domain.RolePatient}, nil)
	profiles.On("GetProfile", ctx, patientID).Return(&domain.PatientProfile{PatientID: patientID, CreatedAt: created}, nil)
	profiles.On("UpsertProfile", ctx, mock.Anything).Return(nil)

	profile, err := service.SaveProfile(ctx, patientID, testProfile())

	require.NoError(t, err)
	assert.Equal(t, created, profile.CreatedAt)
	assert.True(t, profile.UpdatedAt.After(created))
}

func TestProfileService_SaveProfile_Rejections(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New()

	t.Run("not a patient", func(t *testing.T) {
		profiles := new(MockProfileRepository)
		accounts := new(MockAccountRepository)
		accounts.On("GetAccount", ctx, patientID).Return(&domain.Account{ID: patientID, Role: domain.RoleDoctor}, nil)

		_, err := services.NewProfileService(profiles, accounts).SaveProfile(ctx, patientID, testProfile())

		assert.ErrorIs(t, err, domain.ErrNotAPatient)
		profiles.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
	})

	t.Run("unknown account", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		accounts.On("GetAccount", ctx, patientID).Return(nil, domain.ErrAccountNotFound)

		_, err := services.NewProfileService(new(MockProfileRepository), accounts).SaveProfile(ctx, patientID, testProfile())

		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("invalid profile", func(t *testing.T) {
		profiles := new(MockProfileRepository)
		accounts := new(MockAccountRepository)
		accounts.On("GetAccount", ctx, patientID).Return(&domain.Account{ID: patientID, Role: domain.RolePatient}, nil)
		descriptor := testProfile()
		descriptor.Age = 200

		_, err := services.NewProfileService(profiles, accounts).SaveProfile(ctx, patientID, descriptor)

		var validationErr *services.ProfileValidationError
		assert.True(t, errors.As(err, &validationErr))
		profiles.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
	})
}

func TestProfileService_ListPatients(t *testing.T) {
	profiles := new(MockProfileRepository)
	accounts := new(MockAccountRepository)
	service := services.NewProfileService(profiles, accounts)
	ctx := context.Background()

	withProfile := &domain.Account{ID: uuid.New(), Role: domain.RolePatient}
	withoutProfile := &domain.Account{ID: uuid.New(), Role: domain.RolePatient}

	accounts.On("ListAccounts", ctx, domain.RolePatient, domain.ApprovalStatus("")).
		Return([]*domain.Account{withProfile, withoutProfile}, nil)
	profiles.On("GetProfile", ctx, withProfile.ID).Return(storedProfile(withProfile.ID), nil)
	profiles.On("GetProfile", ctx, withoutProfile.ID).Return(nil, domain.ErrProfileNotFound)

	patients, err := service.ListPatients(ctx)

	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.NotNil(t, patients[0].Profile)
	assert.Nil(t, patients[1].Profile)
}
