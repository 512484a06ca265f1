package office

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Office is an in-memory appointment book for a single doctor's office.
// It is not safe for concurrent use.
type Office struct {
	name     string
	doctors  map[int]Doctor
	patients map[int]*Patient
	// archived keeps patients removed by the cancellation limit so slots
	// still booked to them can be displayed and cancelled.
	archived map[int]*Patient
	schedule map[int64]*bucket
	limit    int
	events   []Event
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures an Office at construction.
type Option func(*Office)

// WithLogger sets the logger used for events and warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Office) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCancellationLimit overrides DefaultCancellationLimit. Non-positive
// values are ignored.
func WithCancellationLimit(limit int) Option {
	return func(o *Office) {
		if limit > 0 {
			o.limit = limit
		}
	}
}

// WithClock replaces time.Now as the source of event times.
func WithClock(now func() time.Time) Option {
	return func(o *Office) {
		if now != nil {
			o.now = now
		}
	}
}

// New returns an empty office with the default cancellation limit.
func New(name string, opts ...Option) *Office {
	o := &Office{
		name:     name,
		doctors:  make(map[int]Doctor),
		patients: make(map[int]*Patient),
		archived: make(map[int]*Patient),
		schedule: make(map[int64]*bucket),
		limit:    DefaultCancellationLimit,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(zap.String("office", name))
	return o
}

func (o *Office) Name() string { return o.name }

func (o *Office) CancellationLimit() int { return o.limit }

// Registry

func (o *Office) AddDoctor(d Doctor) error {
	if _, ok := o.doctors[d.id]; ok {
		return ErrDuplicateDoctor
	}
	o.doctors[d.id] = d
	o.logEvent(EventDoctorAdded, o.now(), map[string]any{
		"doctor_id": d.id,
		"name":      d.name,
		"room":      d.homeRoom,
	})
	return nil
}

// AddPatient registers p. An id previously removed by the cancellation limit
// can be registered again; it keeps the archived cancellation count, so the
// next cancellation removes it again.
func (o *Office) AddPatient(p Patient) error {
	if _, ok := o.patients[p.id]; ok {
		return ErrDuplicatePatient
	}
	registered := p
	if prev, ok := o.archived[p.id]; ok {
		registered.cancellations = max(registered.cancellations, prev.cancellations)
		delete(o.archived, p.id)
	}
	o.patients[p.id] = &registered
	o.logEvent(EventPatientAdded, o.now(), map[string]any{
		"patient_id":        p.id,
		"primary_doctor_id": p.primaryDoctorID,
		"cancellations":     registered.cancellations,
	})
	return nil
}

func (o *Office) Doctor(id int) (Doctor, bool) {
	d, ok := o.doctors[id]
	return d, ok
}

// Patient returns a copy of an actively registered patient.
func (o *Office) Patient(id int) (Patient, bool) {
	p, ok := o.patients[id]
	if !ok {
		return Patient{}, false
	}
	return *p, true
}

func (o *Office) Doctors() []Doctor {
	out := make([]Doctor, 0, len(o.doctors))
	for _, d := range o.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (o *Office) Patients() []Patient {
	out := make([]Patient, 0, len(o.patients))
	for _, p := range o.patients {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (o *Office) ChangePrimaryDoctor(patientID, doctorID int) error {
	p, ok := o.patients[patientID]
	if !ok {
		return ErrPatientNotFound
	}
	from := p.primaryDoctorID
	p.ChangePrimaryDoctor(doctorID)
	o.logEvent(EventPrimaryChanged, o.now(), map[string]any{
		"patient_id": patientID,
		"from":       from,
		"to":         doctorID,
	})
	return nil
}

// Availability

func (o *Office) IsDoctorAvailable(at time.Time, doctorID int) bool {
	b, ok := o.schedule[slotKey(at)]
	if !ok {
		return true
	}
	return b.slotOfDoctor(doctorID) == nil
}

// ScheduleDoctorAvailability opens a slot in the doctor's home room at at.
func (o *Office) ScheduleDoctorAvailability(at time.Time, doctorID int) error {
	d, ok := o.doctors[doctorID]
	if !ok {
		return ErrDoctorNotFound
	}

	key := slotKey(at)
	b, ok := o.schedule[key]
	if ok {
		if b.slotOfDoctor(doctorID) != nil {
			return ErrDoctorUnavailable
		}
		if _, taken := b.slots[d.homeRoom]; taken {
			return ErrRoomOccupied
		}
	} else {
		b = newBucket(at.Truncate(time.Minute))
		o.schedule[key] = b
	}

	b.add(&Slot{Room: d.homeRoom, DoctorID: doctorID})

	o.logEvent(EventSlotOpened, b.at, map[string]any{
		"doctor_id": doctorID,
		"room":      d.homeRoom,
	})
	return nil
}

// Booking

// BookPatient books the patient into an open slot at at. An open slot with
// the patient's primary doctor wins; otherwise the first open slot in
// insertion order is used.
func (o *Office) BookPatient(at time.Time, patientID int) error {
	b, ok := o.schedule[slotKey(at)]
	if !ok {
		return ErrNoSlots
	}
	p, ok := o.patients[patientID]
	if !ok {
		return ErrPatientNotFound
	}
	if b.slotOfPatient(patientID) != nil {
		return ErrAlreadyBooked
	}

	var primary, fallback *Slot
	b.each(func(s *Slot) bool {
		if !s.Open() {
			return true
		}
		if s.DoctorID == p.primaryDoctorID {
			primary = s
			return false
		}
		if fallback == nil {
			fallback = s
		}
		return true
	})

	target := primary
	if target == nil {
		target = fallback
	}
	if target == nil {
		return ErrNoOpenSlot
	}

	o.assign(target, patientID)
	o.logEvent(EventAppointmentBooked, b.at, map[string]any{
		"patient_id":    patientID,
		"doctor_id":     target.DoctorID,
		"room":          target.Room,
		"primary_match": primary != nil,
	})
	return nil
}

// Cancellation

// CancelAppointmentByPatient clears the patient's slot at at. The slot stays
// open for its doctor. Reaching the cancellation limit removes the patient
// from the active registry.
func (o *Office) CancelAppointmentByPatient(at time.Time, patientID int) error {
	b, ok := o.schedule[slotKey(at)]
	if !ok {
		return ErrNoSlots
	}
	s := b.slotOfPatient(patientID)
	if s == nil {
		return ErrAppointmentNotFound
	}

	s.PatientID = nil

	count := 0
	if p := o.lookupPatient(patientID); p != nil {
		count = p.recordCancellation()
	}

	o.logEvent(EventCancelledByPatient, b.at, map[string]any{
		"patient_id":    patientID,
		"doctor_id":     s.DoctorID,
		"room":          s.Room,
		"cancellations": count,
	})

	if p, active := o.patients[patientID]; active && count >= o.limit {
		delete(o.patients, patientID)
		o.archived[patientID] = p
		o.logger.Info("patient removed after cancellation limit",
			zap.Int("patient_id", patientID),
			zap.Int("cancellations", count),
		)
		o.logEvent(EventPatientRemoved, b.at, map[string]any{
			"patient_id":    patientID,
			"cancellations": count,
		})
	}
	return nil
}

// CancelAppointmentByDoctor deletes the doctor's slot at at. A patient booked
// there is moved to the earliest open slot at or after at; rebooked reports
// whether that succeeded.
func (o *Office) CancelAppointmentByDoctor(at time.Time, doctorID int) (rebooked bool, err error) {
	key := slotKey(at)
	b, ok := o.schedule[key]
	if !ok {
		return false, ErrNoSlots
	}
	s := b.slotOfDoctor(doctorID)
	if s == nil {
		return false, ErrAppointmentNotFound
	}

	b.remove(s.Room)
	if len(b.rooms) == 0 {
		delete(o.schedule, key)
	}

	payload := map[string]any{
		"doctor_id": doctorID,
		"room":      s.Room,
	}
	if s.PatientID != nil {
		payload["patient_id"] = *s.PatientID
	}
	o.logEvent(EventCancelledByDoctor, b.at, payload)

	if s.PatientID == nil {
		return false, nil
	}

	patientID := *s.PatientID
	if err := o.FindAndBookNextAvailable(b.at, patientID); err != nil {
		o.logger.Info("patient could not be rebooked",
			zap.Int("patient_id", patientID),
			zap.Time("from", b.at),
			zap.Error(err),
		)
		return false, nil
	}
	return true, nil
}

// FindAndBookNextAvailable books the patient into the chronologically first
// open slot at or after at. Time points where the patient already holds a
// slot are skipped.
func (o *Office) FindAndBookNextAvailable(at time.Time, patientID int) error {
	if _, ok := o.patients[patientID]; !ok {
		return ErrPatientNotFound
	}

	from := slotKey(at)
	for _, key := range o.sortedKeys() {
		if key < from {
			continue
		}
		b := o.schedule[key]
		if b.slotOfPatient(patientID) != nil {
			continue
		}

		var target *Slot
		b.each(func(s *Slot) bool {
			if s.Open() {
				target = s
				return false
			}
			return true
		})
		if target == nil {
			continue
		}

		o.assign(target, patientID)
		o.logEvent(EventAppointmentRebooked, b.at, map[string]any{
			"patient_id": patientID,
			"doctor_id":  target.DoctorID,
			"room":       target.Room,
			"from":       at,
		})
		return nil
	}
	return ErrNoOpenSlot
}

// Reporting

// AppointmentsAt lists every slot at at, sorted by room.
func (o *Office) AppointmentsAt(at time.Time) []Record {
	b, ok := o.schedule[slotKey(at)]
	if !ok {
		return []Record{}
	}
	return o.bucketRecords(b, o.sharedNames())
}

// ToScheduleList lists every slot ordered by time then room. A non-zero week
// restricts the list to that calendar week.
func (o *Office) ToScheduleList(week time.Time) []Record {
	shared := o.sharedNames()
	out := []Record{}
	for _, key := range o.sortedKeys() {
		b := o.schedule[key]
		if !InWeek(b.at, week) {
			continue
		}
		out = append(out, o.bucketRecords(b, shared)...)
	}
	return out
}

// AppointmentsFor lists the slots booked to a patient in chronological order.
func (o *Office) AppointmentsFor(patientID int) []Record {
	shared := o.sharedNames()
	out := []Record{}
	for _, key := range o.sortedKeys() {
		b := o.schedule[key]
		if s := b.slotOfPatient(patientID); s != nil {
			out = append(out, o.record(b, s, shared))
		}
	}
	return out
}

// BookedTimes returns the time points at which the patient holds a slot.
func (o *Office) BookedTimes(patientID int) []time.Time {
	var out []time.Time
	for _, key := range o.sortedKeys() {
		b := o.schedule[key]
		if b.slotOfPatient(patientID) != nil {
			out = append(out, b.at)
		}
	}
	return out
}

// Events returns the journal of successful mutations in order.
func (o *Office) Events() []Event {
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}

// helpers

func slotKey(at time.Time) int64 {
	return at.Truncate(time.Minute).Unix()
}

func (o *Office) sortedKeys() []int64 {
	keys := make([]int64, 0, len(o.schedule))
	for k := range o.schedule {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (o *Office) assign(s *Slot, patientID int) {
	id := patientID
	s.PatientID = &id
}

func (o *Office) lookupPatient(id int) *Patient {
	if p, ok := o.patients[id]; ok {
		return p
	}
	return o.archived[id]
}

// sharedNames returns the doctor names used by more than one registered doctor.
func (o *Office) sharedNames() map[string]bool {
	counts := make(map[string]int, len(o.doctors))
	for _, d := range o.doctors {
		counts[d.name]++
	}
	shared := make(map[string]bool)
	for name, n := range counts {
		if n > 1 {
			shared[name] = true
		}
	}
	return shared
}

func (o *Office) bucketRecords(b *bucket, shared map[string]bool) []Record {
	out := make([]Record, 0, len(b.rooms))
	b.each(func(s *Slot) bool {
		out = append(out, o.record(b, s, shared))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Room < out[j].Room })
	return out
}

func (o *Office) record(b *bucket, s *Slot, shared map[string]bool) Record {
	d := o.doctors[s.DoctorID]
	patient := ""
	if s.PatientID != nil {
		if p := o.lookupPatient(*s.PatientID); p != nil {
			patient = p.name
		}
	}
	return NewRecord(FormatDate(b.at), FormatTime(b.at), s.Room, doctorLabel(d, shared[d.name]), patient)
}

func (o *Office) logEvent(eventType EventType, at time.Time, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		o.logger.Warn("failed to marshal event payload", zap.String("event", string(eventType)), zap.Error(err))
		data = nil
	}

	ev := Event{
		ID:        uuid.New(),
		Type:      eventType,
		At:        at,
		Payload:   data,
		CreatedAt: o.now(),
	}
	o.events = append(o.events, ev)

	o.logger.Debug("event recorded",
		zap.String("event", string(eventType)),
		zap.Stringer("event_id", ev.ID),
		zap.Time("at", at),
	)
}
