package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"healtogether/cmd/internal/domain/entity"
)

// AppointmentRepository stores prescriptions embedded in their appointment.
type AppointmentRepository struct {
	coll *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{coll: db.Collection(appointmentsCollection)}
}

func (a *AppointmentRepository) Insert(ctx context.Context, appt *entity.Appointment) error {
	appt.SyncLiveSlotKey()
	if appt.Prescriptions == nil {
		appt.Prescriptions = []entity.Prescription{}
	}
	_, err := a.coll.InsertOne(ctx, appt)
	if mongo.IsDuplicateKeyError(err) {
		return entity.ErrLiveSlotTaken
	}
	return err
}

// Save writes the mutable fields only; prescriptions are appended through
// AddPrescription.
func (a *AppointmentRepository) Save(ctx context.Context, appt *entity.Appointment) error {
	appt.SyncLiveSlotKey()
	update := bson.M{
		"$set": bson.M{
			"status":    appt.Status,
			"notes":     appt.Notes,
			"location":  appt.Location,
			"updatedAt": appt.UpdatedAt,
		},
	}
	if appt.LiveSlotKey != nil {
		update["$set"].(bson.M)["liveSlotKey"] = *appt.LiveSlotKey
	} else {
		update["$unset"] = bson.M{"liveSlotKey": ""}
	}

	_, err := a.coll.UpdateByID(ctx, appt.ID, update)
	if mongo.IsDuplicateKeyError(err) {
		return entity.ErrLiveSlotTaken
	}
	return err
}

func (a *AppointmentRepository) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	return findOne[entity.Appointment](ctx, a.coll, bson.M{"_id": id})
}

func (a *AppointmentRepository) FindLiveSlot(ctx context.Context, providerID, date, time string) (*entity.Appointment, error) {
	return findOne[entity.Appointment](ctx, a.coll, bson.M{"liveSlotKey": entity.LiveSlotKey(providerID, date, time)})
}

func (a *AppointmentRepository) FindLiveInRange(ctx context.Context, providerID, fromDate, toDate string) ([]*entity.Appointment, error) {
	filter := bson.M{
		"providerId": providerID,
		"date":       bson.M{"$gte": fromDate, "$lt": toDate},
		"status":     bson.M{"$in": []entity.AppointmentStatus{entity.StatusUpcoming, entity.StatusOngoing}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}).
		SetProjection(bson.M{"prescriptions": 0})
	return findMany[entity.Appointment](ctx, a.coll, filter, opts)
}

func (a *AppointmentRepository) FindByParticipant(ctx context.Context, userID string) ([]*entity.Appointment, error) {
	filter := bson.M{"$or": []bson.M{{"patientId": userID}, {"providerId": userID}}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}})
	return findMany[entity.Appointment](ctx, a.coll, filter, opts)
}

func (a *AppointmentRepository) AddPrescription(ctx context.Context, prescription *entity.Prescription) error {
	res, err := a.coll.UpdateByID(ctx, prescription.AppointmentID, bson.M{
		"$push": bson.M{"prescriptions": prescription},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (a *AppointmentRepository) FindPrescription(ctx context.Context, id string) (*entity.Prescription, error) {
	appt, err := findOne[entity.Appointment](ctx, a.coll, bson.M{"prescriptions.id": id})
	if err != nil || appt == nil {
		return nil, err
	}
	for i := range appt.Prescriptions {
		if appt.Prescriptions[i].ID == id {
			return &appt.Prescriptions[i], nil
		}
	}
	return nil, nil
}
