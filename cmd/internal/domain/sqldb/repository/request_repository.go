package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"healtogether/cmd/internal/domain/entity"
)

type DefaultCaretakerRequestRepository struct {
	db *gorm.DB
}

func NewCaretakerRequestRepository(db *gorm.DB) *DefaultCaretakerRequestRepository {
	return &DefaultCaretakerRequestRepository{db: db}
}

func (r *DefaultCaretakerRequestRepository) Save(ctx context.Context, req *entity.CaretakerRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *DefaultCaretakerRequestRepository) FindByID(ctx context.Context, id string) (*entity.CaretakerRequest, error) {
	var req entity.CaretakerRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByParticipant lists requests sent by or addressed to userID, newest first.
func (r *DefaultCaretakerRequestRepository) FindByParticipant(ctx context.Context, userID string) ([]*entity.CaretakerRequest, error) {
	var reqs []*entity.CaretakerRequest
	err := r.db.WithContext(ctx).
		Where("patient_id = ? OR caretaker_id = ?", userID, userID).
		Order("created_at desc").
		Find(&reqs).Error
	return reqs, err
}

type DefaultVisitRequestRepository struct {
	db *gorm.DB
}

func NewVisitRequestRepository(db *gorm.DB) *DefaultVisitRequestRepository {
	return &DefaultVisitRequestRepository{db: db}
}

func (r *DefaultVisitRequestRepository) Save(ctx context.Context, req *entity.MedicalVisitRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *DefaultVisitRequestRepository) FindByID(ctx context.Context, id string) (*entity.MedicalVisitRequest, error) {
	var req entity.MedicalVisitRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *DefaultVisitRequestRepository) FindByPatient(ctx context.Context, patientID string) ([]*entity.MedicalVisitRequest, error) {
	var reqs []*entity.MedicalVisitRequest
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("visit_date desc, visit_time desc").
		Find(&reqs).Error
	return reqs, err
}

// FindOpenOrAssigned lists pending visits plus every visit assigned to the
// medical assistant.
func (r *DefaultVisitRequestRepository) FindOpenOrAssigned(ctx context.Context, assistantID string) ([]*entity.MedicalVisitRequest, error) {
	var reqs []*entity.MedicalVisitRequest
	err := r.db.WithContext(ctx).
		Where("status = ? OR medical_assistant_id = ?", entity.VisitPending, assistantID).
		Order("visit_date desc, visit_time desc").
		Find(&reqs).Error
	return reqs, err
}
