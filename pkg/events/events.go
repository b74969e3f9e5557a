package events

import "time"

// Event types published to the reservation stream.
const (
	TypeAppointmentCreated = "appointment.created"
	TypeAppointmentDeleted = "appointment.deleted"
	TypeBookingCreated     = "booking.created"
	TypeBookingDeleted     = "booking.deleted"
)

// Event is the envelope written to the stream. Key selection hashes
// events for one appointment onto the same partition, so consumers see
// reserve and release in order.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	OccurredAt    time.Time `json:"occurred_at"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	BookingID     string    `json:"booking_id,omitempty"`
	DoctorID      string    `json:"doctor_id,omitempty"`
	PatientID     string    `json:"patient_id,omitempty"`
}
