package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"healtogether/cmd/internal/domain/entity"
)

type IntakeRepository struct {
	coll *mongo.Collection
}

func NewIntakeRepository(db *mongo.Database) *IntakeRepository {
	return &IntakeRepository{coll: db.Collection(intakesCollection)}
}

func (i *IntakeRepository) Upsert(ctx context.Context, intake *entity.MedicationIntake) (*entity.MedicationIntake, error) {
	filter := bson.M{"prescriptionId": intake.PrescriptionID, "date": intake.Date, "time": intake.Time}
	update := bson.M{
		"$set": bson.M{"taken": intake.Taken, "updatedAt": intake.UpdatedAt},
		"$setOnInsert": bson.M{
			"_id":        intake.ID,
			"medicine":   intake.Medicine,
			"recordedBy": intake.RecordedBy,
			"createdAt":  intake.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := i.coll.UpdateOne(ctx, filter, update, opts)
	// Two concurrent upserts can both miss and race on insert; the loser
	// retries as a plain update.
	if mongo.IsDuplicateKeyError(err) {
		_, err = i.coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return nil, err
	}
	return findOne[entity.MedicationIntake](ctx, i.coll, filter)
}

func (i *IntakeRepository) FindByPrescriptions(ctx context.Context, ids []string) ([]*entity.MedicationIntake, error) {
	filter := bson.M{}
	if ids != nil {
		if len(ids) == 0 {
			return []*entity.MedicationIntake{}, nil
		}
		filter["prescriptionId"] = bson.M{"$in": ids}
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}})
	return findMany[entity.MedicationIntake](ctx, i.coll, filter, opts)
}
