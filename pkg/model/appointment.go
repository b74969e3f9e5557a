package model

import "time"

// AppointmentSlot is the bookable [start, end) interval offered by a doctor.
type AppointmentSlot struct {
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required"`
}

// Appointment is one bookable time slot. Booked and BookedBy move together:
// Booked is true iff BookedBy references the patient holding the slot.
type Appointment struct {
	ID        string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	DoctorID  string          `json:"doctor_id" bson:"doctor_id" validate:"required,mongodb"`
	Slot      AppointmentSlot `json:"appointment_slot" bson:"appointment_slot" validate:"required"`
	Booked    bool            `json:"booked" bson:"booked"`
	BookedBy  string          `json:"booked_by,omitempty" bson:"booked_by,omitempty" validate:"omitempty,mongodb"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// AppointmentCreateRequest is the payload for publishing a slot. The
// doctor is resolved from the authenticated principal, never the body.
type AppointmentCreateRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type AppointmentUpdate struct {
	Booked    *bool      `json:"booked,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	DoctorID string
	Booked   *bool
	FromTime *time.Time
	ToTime   *time.Time
}
