package model

import "time"

// Booking is a patient's reservation of one appointment. At most one booking
// may reference an appointment at any time.
type Booking struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AppointmentID  string    `json:"appointment_id" bson:"appointment_id" validate:"required,mongodb"`
	PatientID      string    `json:"patient_id" bson:"patient_id" validate:"required,mongodb"`
	Attended       bool      `json:"attended" bson:"attended"`
	FeePaid        bool      `json:"fee_paid" bson:"fee_paid"`
	ReasonForVisit string    `json:"reason_for_visit,omitempty" bson:"reason_for_visit,omitempty" validate:"omitempty,max=2000"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingCreateRequest is the payload for reserving an appointment.
// PatientID is optional; when empty the caller's own patient profile
// is used.
type BookingCreateRequest struct {
	AppointmentID  string `json:"appointment_id" validate:"required"`
	PatientID      string `json:"patient_id,omitempty" validate:"omitempty,mongodb"`
	ReasonForVisit string `json:"reason_for_visit,omitempty" validate:"omitempty,max=2000"`
}

type BookingUpdate struct {
	Attended       *bool  `json:"attended,omitempty"`
	FeePaid        *bool  `json:"fee_paid,omitempty"`
	ReasonForVisit string `json:"reason_for_visit,omitempty" validate:"omitempty,max=2000"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	PatientID string
	Attended  *bool
	FeePaid   *bool
}
