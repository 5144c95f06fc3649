package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"healtogether/cmd/internal/domain/entity"
	"healtogether/cmd/internal/utils"
	"healtogether/cmd/internal/utils/validators"
)

var (
	_ UserRepository             = (*fakeUserRepo)(nil)
	_ AppointmentRepository      = (*fakeAppointmentRepo)(nil)
	_ IntakeRepository           = (*fakeIntakeRepo)(nil)
	_ CaretakerRequestRepository = (*fakeCaretakerRepo)(nil)
	_ VisitRequestRepository     = (*fakeVisitRepo)(nil)
)

// 2026-10-19 is a Monday.
var testToday = time.Date(2026, time.October, 19, 8, 0, 0, 0, time.Local)

func fixedClock() time.Time { return testToday }

var testValidate = validators.New()

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	err   error
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(_ context.Context, role entity.Role) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*entity.User, 0)
	for _, u := range f.users {
		if role == "" || u.Role == role {
			cp := *u
			users = append(users, &cp)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (f *fakeUserRepo) Save(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return entity.ErrDuplicate
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

// fakeAppointmentRepo enforces the unique live slot key like the real stores.
type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts map[string]*entity.Appointment
	order []string

	// afterLiveCheck runs once FindLiveSlot returns, to interleave a
	// competing booking.
	afterLiveCheck func()
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: map[string]*entity.Appointment{}}
}

func (f *fakeAppointmentRepo) Insert(_ context.Context, appt *entity.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt.SyncLiveSlotKey()
	if f.holdsKey(appt) {
		return entity.ErrLiveSlotTaken
	}
	cp := *appt
	f.appts[appt.ID] = &cp
	f.order = append(f.order, appt.ID)
	return nil
}

func (f *fakeAppointmentRepo) Save(_ context.Context, appt *entity.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt.SyncLiveSlotKey()
	if f.holdsKey(appt) {
		return entity.ErrLiveSlotTaken
	}
	existing := f.appts[appt.ID]
	cp := *appt
	if existing != nil {
		cp.Prescriptions = existing.Prescriptions
	}
	f.appts[appt.ID] = &cp
	return nil
}

func (f *fakeAppointmentRepo) holdsKey(appt *entity.Appointment) bool {
	if appt.LiveSlotKey == nil {
		return false
	}
	for id, other := range f.appts {
		if id != appt.ID && other.LiveSlotKey != nil && *other.LiveSlotKey == *appt.LiveSlotKey {
			return true
		}
	}
	return false
}

func (f *fakeAppointmentRepo) FindByID(_ context.Context, id string) (*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.appts[id]; ok {
		cp := *a
		cp.Prescriptions = append([]entity.Prescription(nil), a.Prescriptions...)
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeAppointmentRepo) FindLiveSlot(_ context.Context, providerID, date, time string) (*entity.Appointment, error) {
	f.mu.Lock()
	key := entity.LiveSlotKey(providerID, date, time)
	var found *entity.Appointment
	for _, a := range f.appts {
		if a.LiveSlotKey != nil && *a.LiveSlotKey == key {
			cp := *a
			found = &cp
		}
	}
	hook := f.afterLiveCheck
	f.afterLiveCheck = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return found, nil
}

func (f *fakeAppointmentRepo) FindLiveInRange(_ context.Context, providerID, fromDate, toDate string) ([]*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appts := make([]*entity.Appointment, 0)
	for _, id := range f.order {
		a := f.appts[id]
		if a.ProviderID == providerID && a.Status.IsLive() && a.Date >= fromDate && a.Date < toDate {
			cp := *a
			appts = append(appts, &cp)
		}
	}
	return appts, nil
}

func (f *fakeAppointmentRepo) FindByParticipant(_ context.Context, userID string) ([]*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appts := make([]*entity.Appointment, 0)
	for _, id := range f.order {
		a := f.appts[id]
		if a.IsParticipant(userID) {
			cp := *a
			appts = append(appts, &cp)
		}
	}
	sort.SliceStable(appts, func(i, j int) bool { return appts[i].Date > appts[j].Date })
	return appts, nil
}

func (f *fakeAppointmentRepo) AddPrescription(_ context.Context, prescription *entity.Prescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt := f.appts[prescription.AppointmentID]
	appt.Prescriptions = append(appt.Prescriptions, *prescription)
	return nil
}

func (f *fakeAppointmentRepo) FindPrescription(_ context.Context, id string) (*entity.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		for _, p := range a.Prescriptions {
			if p.ID == id {
				cp := p
				return &cp, nil
			}
		}
	}
	return nil, nil
}

type fakeIntakeRepo struct {
	mu      sync.Mutex
	intakes []*entity.MedicationIntake
}

func (f *fakeIntakeRepo) Upsert(_ context.Context, intake *entity.MedicationIntake) (*entity.MedicationIntake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.intakes {
		if existing.PrescriptionID == intake.PrescriptionID && existing.Date == intake.Date && existing.Time == intake.Time {
			existing.Taken = intake.Taken
			existing.UpdatedAt = intake.UpdatedAt
			cp := *existing
			return &cp, nil
		}
	}
	cp := *intake
	f.intakes = append(f.intakes, &cp)
	out := cp
	return &out, nil
}

func (f *fakeIntakeRepo) FindByPrescriptions(_ context.Context, ids []string) ([]*entity.MedicationIntake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	intakes := make([]*entity.MedicationIntake, 0)
	for _, in := range f.intakes {
		if ids == nil || wanted[in.PrescriptionID] {
			cp := *in
			intakes = append(intakes, &cp)
		}
	}
	sort.SliceStable(intakes, func(i, j int) bool {
		if intakes[i].Date != intakes[j].Date {
			return intakes[i].Date > intakes[j].Date
		}
		return intakes[i].Time > intakes[j].Time
	})
	return intakes, nil
}

type fakeCaretakerRepo struct {
	requests map[string]*entity.CaretakerRequest
}

func newFakeCaretakerRepo() *fakeCaretakerRepo {
	return &fakeCaretakerRepo{requests: map[string]*entity.CaretakerRequest{}}
}

func (f *fakeCaretakerRepo) Save(_ context.Context, req *entity.CaretakerRequest) error {
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeCaretakerRepo) FindByID(_ context.Context, id string) (*entity.CaretakerRequest, error) {
	if r, ok := f.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCaretakerRepo) FindByParticipant(_ context.Context, userID string) ([]*entity.CaretakerRequest, error) {
	reqs := make([]*entity.CaretakerRequest, 0)
	for _, r := range f.requests {
		if r.PatientID == userID || r.CaretakerID == userID {
			cp := *r
			reqs = append(reqs, &cp)
		}
	}
	return reqs, nil
}

type fakeVisitRepo struct {
	visits map[string]*entity.MedicalVisitRequest
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{visits: map[string]*entity.MedicalVisitRequest{}}
}

func (f *fakeVisitRepo) Save(_ context.Context, req *entity.MedicalVisitRequest) error {
	cp := *req
	f.visits[req.ID] = &cp
	return nil
}

func (f *fakeVisitRepo) FindByID(_ context.Context, id string) (*entity.MedicalVisitRequest, error) {
	if v, ok := f.visits[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeVisitRepo) FindByPatient(_ context.Context, patientID string) ([]*entity.MedicalVisitRequest, error) {
	visits := make([]*entity.MedicalVisitRequest, 0)
	for _, v := range f.visits {
		if v.PatientID == patientID {
			cp := *v
			visits = append(visits, &cp)
		}
	}
	return visits, nil
}

func (f *fakeVisitRepo) FindOpenOrAssigned(_ context.Context, assistantID string) ([]*entity.MedicalVisitRequest, error) {
	visits := make([]*entity.MedicalVisitRequest, 0)
	for _, v := range f.visits {
		if v.Status == entity.VisitPending || v.MedicalAssistantID == assistantID {
			cp := *v
			visits = append(visits, &cp)
		}
	}
	return visits, nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(data *utils.TokenData) (string, error) {
	return "token-for-" + data.UserID, nil
}

func newDoctor(id string, template entity.WeeklyTemplate) *entity.User {
	u := &entity.User{ID: id, Name: "Dr. " + id, Email: id + "@example.com", Role: entity.RoleDoctor}
	u.SetTemplate(template)
	return u
}

func newPatient(id string) *entity.User {
	return &entity.User{ID: id, Name: "Patient " + id, Email: id + "@example.com", Role: entity.RolePatient}
}

func patientCaller(id string) Caller {
	return Caller{UserID: id, Role: entity.RolePatient}
}
