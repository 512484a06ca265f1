package office

import "errors"

var (
	ErrDuplicateDoctor     = errors.New("doctor id already registered")
	ErrDuplicatePatient    = errors.New("patient id already registered")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorUnavailable   = errors.New("doctor already has a slot at this time")
	ErrRoomOccupied        = errors.New("room already in use at this time")
	ErrNoSlots             = errors.New("no slots at this time")
	ErrNoOpenSlot          = errors.New("no open slot available")
	ErrAlreadyBooked       = errors.New("patient already booked at this time")
	ErrAppointmentNotFound = errors.New("appointment not found")
)
