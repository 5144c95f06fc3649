package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"healtogether/cmd/internal/domain/entity"
	"healtogether/cmd/internal/domain/sqldb"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

// Insert stores a new appointment. When another live appointment already
// holds the same provider slot the unique live_slot_key index rejects the
// row and entity.ErrLiveSlotTaken is returned.
func (a *DefaultAppointmentRepository) Insert(ctx context.Context, appt *entity.Appointment) error {
	appt.SyncLiveSlotKey()
	err := a.db.WithContext(ctx).Omit("Prescriptions").Create(appt).Error
	if sqldb.IsUniqueViolation(err) {
		return entity.ErrLiveSlotTaken
	}
	return err
}

// Save updates an existing appointment without touching its prescriptions.
func (a *DefaultAppointmentRepository) Save(ctx context.Context, appt *entity.Appointment) error {
	appt.SyncLiveSlotKey()
	err := a.db.WithContext(ctx).Omit("Prescriptions").Save(appt).Error
	if sqldb.IsUniqueViolation(err) {
		return entity.ErrLiveSlotTaken
	}
	return err
}

func (a *DefaultAppointmentRepository) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).
		Preload("Prescriptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// FindLiveSlot returns the live appointment holding the provider slot, if any.
func (a *DefaultAppointmentRepository) FindLiveSlot(ctx context.Context, providerID, date, time string) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).
		Where("live_slot_key = ?", entity.LiveSlotKey(providerID, date, time)).
		First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// FindLiveInRange returns the provider's live appointments dated in
// [fromDate, toDate). ISO dates compare correctly as strings.
func (a *DefaultAppointmentRepository) FindLiveInRange(ctx context.Context, providerID, fromDate, toDate string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Where("date >= ? AND date < ?", fromDate, toDate).
		Where("status IN ?", []entity.AppointmentStatus{entity.StatusUpcoming, entity.StatusOngoing}).
		Order("date asc, time asc").
		Find(&appts).Error
	return appts, err
}

// FindByParticipant lists appointments where userID is patient or provider,
// newest date first.
func (a *DefaultAppointmentRepository) FindByParticipant(ctx context.Context, userID string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Preload("Prescriptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Where("patient_id = ? OR provider_id = ?", userID, userID).
		Order("date desc, time desc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) AddPrescription(ctx context.Context, prescription *entity.Prescription) error {
	return a.db.WithContext(ctx).Create(prescription).Error
}

func (a *DefaultAppointmentRepository) FindPrescription(ctx context.Context, id string) (*entity.Prescription, error) {
	var prescription entity.Prescription
	err := a.db.WithContext(ctx).First(&prescription, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}
