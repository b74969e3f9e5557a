package validator

import (
	"strings"
	"testing"

	"mediq/pkg/logger"
	"mediq/pkg/model"
)

func newTestValidator() *PatientValidator {
	log := logger.New(logger.Config{
		Level:   logger.LevelError,
		Format:  logger.FormatText,
		Service: "test",
	})
	return NewPatientValidator(log)
}

func validPatient() *model.Patient {
	return &model.Patient{
		UserID:        "64a000000000000000000001",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		ContactNumber: "0400000000",
		Address: model.Address{
			StreetNumber: 1,
			StreetName:   "Collins Street",
			Suburb:       "Melbourne",
			State:        "Victoria",
			Postcode:     3000,
		},
	}
}

func TestValidateAcceptsCompleteProfile(t *testing.T) {
	v := newTestValidator()
	if err := v.Validate(validPatient()); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestValidateStateRule(t *testing.T) {
	tests := []struct {
		name    string
		state   string
		wantErr bool
	}{
		{name: "exact match", state: "Victoria", wantErr: false},
		{name: "case insensitive", state: "new south wales", wantErr: false},
		{name: "surrounding whitespace", state: " Tasmania ", wantErr: false},
		{name: "abbreviation rejected", state: "VIC", wantErr: true},
		{name: "foreign state rejected", state: "California", wantErr: true},
		{name: "empty rejected", state: "", wantErr: true},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patient := validPatient()
			patient.Address.State = tt.state

			err := v.Validate(patient)
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for state %q, got nil", tt.state)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error for state %q: %v", tt.state, err)
			}
		})
	}
}

func TestValidateTranslatesMissingFields(t *testing.T) {
	v := newTestValidator()
	patient := validPatient()
	patient.FirstName = ""
	patient.ContactNumber = ""

	err := v.Validate(patient)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "FirstName is required") {
		t.Errorf("Expected translated FirstName message, got %v", err)
	}
	if !strings.Contains(err.Error(), "ContactNumber is required") {
		t.Errorf("Expected translated ContactNumber message, got %v", err)
	}
}
