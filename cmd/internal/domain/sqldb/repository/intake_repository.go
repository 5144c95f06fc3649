package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healtogether/cmd/internal/domain/entity"
)

type DefaultIntakeRepository struct {
	db *gorm.DB
}

func NewIntakeRepository(db *gorm.DB) *DefaultIntakeRepository {
	return &DefaultIntakeRepository{db: db}
}

// Upsert records one dose. A second write for the same prescription, date
// and time only overwrites Taken, and the stored row is returned.
func (i *DefaultIntakeRepository) Upsert(ctx context.Context, intake *entity.MedicationIntake) (*entity.MedicationIntake, error) {
	db := i.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prescription_id"}, {Name: "date"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{"taken", "updated_at"}),
	}).Create(intake).Error
	if err != nil {
		return nil, err
	}

	var stored entity.MedicationIntake
	err = db.Where("prescription_id = ? AND date = ? AND time = ?", intake.PrescriptionID, intake.Date, intake.Time).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// FindByPrescriptions lists intakes newest first. A nil ids slice matches
// every prescription.
func (i *DefaultIntakeRepository) FindByPrescriptions(ctx context.Context, ids []string) ([]*entity.MedicationIntake, error) {
	var intakes []*entity.MedicationIntake
	query := i.db.WithContext(ctx).Order("date desc, time desc")
	if ids != nil {
		if len(ids) == 0 {
			return intakes, nil
		}
		query = query.Where("prescription_id IN ?", ids)
	}
	err := query.Find(&intakes).Error
	return intakes, err
}
