package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"healtogether/cmd/internal/domain/entity"
)

type CaretakerRequestRepository struct {
	coll *mongo.Collection
}

func NewCaretakerRequestRepository(db *mongo.Database) *CaretakerRequestRepository {
	return &CaretakerRequestRepository{coll: db.Collection(caretakerRequestsCollection)}
}

func (r *CaretakerRequestRepository) Save(ctx context.Context, req *entity.CaretakerRequest) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": req.ID}, req, options.Replace().SetUpsert(true))
	return err
}

func (r *CaretakerRequestRepository) FindByID(ctx context.Context, id string) (*entity.CaretakerRequest, error) {
	return findOne[entity.CaretakerRequest](ctx, r.coll, bson.M{"_id": id})
}

func (r *CaretakerRequestRepository) FindByParticipant(ctx context.Context, userID string) ([]*entity.CaretakerRequest, error) {
	filter := bson.M{"$or": []bson.M{{"patientId": userID}, {"caretakerId": userID}}}
	return findMany[entity.CaretakerRequest](ctx, r.coll, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

type VisitRequestRepository struct {
	coll *mongo.Collection
}

func NewVisitRequestRepository(db *mongo.Database) *VisitRequestRepository {
	return &VisitRequestRepository{coll: db.Collection(visitRequestsCollection)}
}

func (r *VisitRequestRepository) Save(ctx context.Context, req *entity.MedicalVisitRequest) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": req.ID}, req, options.Replace().SetUpsert(true))
	return err
}

func (r *VisitRequestRepository) FindByID(ctx context.Context, id string) (*entity.MedicalVisitRequest, error) {
	return findOne[entity.MedicalVisitRequest](ctx, r.coll, bson.M{"_id": id})
}

func (r *VisitRequestRepository) FindByPatient(ctx context.Context, patientID string) ([]*entity.MedicalVisitRequest, error) {
	return findMany[entity.MedicalVisitRequest](ctx, r.coll, bson.M{"patientId": patientID}, visitSort())
}

func (r *VisitRequestRepository) FindOpenOrAssigned(ctx context.Context, assistantID string) ([]*entity.MedicalVisitRequest, error) {
	filter := bson.M{"$or": []bson.M{{"status": entity.VisitPending}, {"medicalAssistantId": assistantID}}}
	return findMany[entity.MedicalVisitRequest](ctx, r.coll, filter, visitSort())
}

func visitSort() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "visitDate", Value: -1}, {Key: "visitTime", Value: -1}})
}
