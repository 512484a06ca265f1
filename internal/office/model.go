package office

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventDoctorAdded         EventType = "DOCTOR_ADDED"
	EventPatientAdded        EventType = "PATIENT_ADDED"
	EventPrimaryChanged      EventType = "PRIMARY_DOCTOR_CHANGED"
	EventSlotOpened          EventType = "SLOT_OPENED"
	EventAppointmentBooked   EventType = "APPOINTMENT_BOOKED"
	EventCancelledByPatient  EventType = "APPOINTMENT_CANCELLED_BY_PATIENT"
	EventCancelledByDoctor   EventType = "APPOINTMENT_CANCELLED_BY_DOCTOR"
	EventAppointmentRebooked EventType = "APPOINTMENT_REBOOKED"
	EventPatientRemoved      EventType = "PATIENT_REMOVED"
)

// DefaultCancellationLimit is the number of cancellations after which a
// patient leaves the active registry.
const DefaultCancellationLimit = 10

// Doctor is immutable once created.
type Doctor struct {
	id       int
	name     string
	homeRoom string
}

func NewDoctor(name string, id int, homeRoom string) Doctor {
	return Doctor{id: id, name: name, homeRoom: homeRoom}
}

func (d Doctor) ID() int          { return d.id }
func (d Doctor) Name() string     { return d.name }
func (d Doctor) HomeRoom() string { return d.homeRoom }

type Patient struct {
	id              int
	name            string
	primaryDoctorID int
	cancellations   int
}

func NewPatient(name string, id, primaryDoctorID int) Patient {
	return Patient{id: id, name: name, primaryDoctorID: primaryDoctorID}
}

func (p Patient) ID() int              { return p.id }
func (p Patient) Name() string         { return p.name }
func (p Patient) PrimaryDoctorID() int { return p.primaryDoctorID }
func (p Patient) Cancellations() int   { return p.cancellations }

// ChangePrimaryDoctor only affects this copy. Use Office.ChangePrimaryDoctor
// for a registered patient.
func (p *Patient) ChangePrimaryDoctor(doctorID int) {
	p.primaryDoctorID = doctorID
}

func (p *Patient) recordCancellation() int {
	p.cancellations++
	return p.cancellations
}

// Slot is one doctor's bookable opportunity in a room. PatientID is nil
// while the slot is open.
type Slot struct {
	Room      string
	DoctorID  int
	PatientID *int
}

func (s *Slot) Open() bool { return s.PatientID == nil }

func (s *Slot) bookedTo(patientID int) bool {
	return s.PatientID != nil && *s.PatientID == patientID
}

// bucket holds every slot sharing a time point. rooms keeps insertion order,
// which is the scan order for booking and rebooking.
type bucket struct {
	at    time.Time
	rooms []string
	slots map[string]*Slot
}

func newBucket(at time.Time) *bucket {
	return &bucket{at: at, slots: make(map[string]*Slot)}
}

func (b *bucket) add(s *Slot) {
	b.rooms = append(b.rooms, s.Room)
	b.slots[s.Room] = s
}

func (b *bucket) remove(room string) {
	delete(b.slots, room)
	for i, r := range b.rooms {
		if r == room {
			b.rooms = append(b.rooms[:i], b.rooms[i+1:]...)
			return
		}
	}
}

func (b *bucket) each(fn func(s *Slot) bool) {
	for _, room := range b.rooms {
		if !fn(b.slots[room]) {
			return
		}
	}
}

func (b *bucket) slotOfDoctor(doctorID int) *Slot {
	var found *Slot
	b.each(func(s *Slot) bool {
		if s.DoctorID == doctorID {
			found = s
			return false
		}
		return true
	})
	return found
}

func (b *bucket) slotOfPatient(patientID int) *Slot {
	var found *Slot
	b.each(func(s *Slot) bool {
		if s.bookedTo(patientID) {
			found = s
			return false
		}
		return true
	})
	return found
}

// Record is the flat display form of a slot.
type Record struct {
	Date    string `json:"Date"`
	Time    string `json:"Time"`
	Room    string `json:"Room"`
	Doctor  string `json:"Doctor"`
	Patient string `json:"Patient"`
}

// Event is one journal entry. At is the slot time point for schedule
// events and the clock time for registry events.
type Event struct {
	ID        uuid.UUID
	Type      EventType
	At        time.Time
	Payload   json.RawMessage
	CreatedAt time.Time
}
