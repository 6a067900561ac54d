package payoutRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookify/database"
	"bookify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPayoutRepo implements PayoutRepository using MongoDB.
type MongoPayoutRepo struct {
	payoutColl *mongo.Collection
}

// NewMongoPayoutRepo constructs a new instance of MongoPayoutRepo.
func NewMongoPayoutRepo() PayoutRepository {
	db := database.DB()
	return &MongoPayoutRepo{
		payoutColl: db.Collection("payout_schedules"),
	}
}

func (repo *MongoPayoutRepo) Create(ctx context.Context, schedule *models.PayoutSchedule) error {
	if _, err := repo.payoutColl.InsertOne(ctx, schedule); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyScheduled
		}
		return fmt.Errorf("error creating payout schedule: %w", err)
	}
	return nil
}

// ClaimNextDue uses an atomic find-and-modify so two concurrent batch workers
// can never pick the same schedule.
func (repo *MongoPayoutRepo) ClaimNextDue(ctx context.Context, now time.Time) (*models.PayoutSchedule, error) {
	filter := bson.M{
		"status":       models.PayoutScheduled,
		"scheduled_at": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"status":          models.PayoutProcessing,
		"last_attempt_at": now,
		"updated_at":      now,
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "scheduled_at", Value: 1}}).
		SetReturnDocument(options.After)

	var schedule models.PayoutSchedule
	if err := repo.payoutColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&schedule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoneDue
		}
		return nil, fmt.Errorf("error claiming due payout: %w", err)
	}
	return &schedule, nil
}

func (repo *MongoPayoutRepo) MarkCompleted(ctx context.Context, payoutID, transferID string, at time.Time) error {
	filter := bson.M{"id": payoutID, "status": models.PayoutProcessing}
	update := bson.M{"$set": bson.M{
		"status":      models.PayoutCompleted,
		"transfer_id": transferID,
		"updated_at":  at,
	}}
	res, err := repo.payoutColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error completing payout %s: %w", payoutID, err)
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "payout", ID: payoutID}
	}
	return nil
}

func (repo *MongoPayoutRepo) MarkCompletedManual(ctx context.Context, payoutID, transferID, operator string, at time.Time) error {
	filter := bson.M{"id": payoutID, "status": bson.M{"$in": []models.PayoutStatus{
		models.PayoutScheduled, models.PayoutProcessing, models.PayoutFailed,
	}}}
	update := bson.M{"$set": bson.M{
		"status":       models.PayoutCompleted,
		"transfer_id":  transferID,
		"completed_by": operator,
		"updated_at":   at,
	}}
	res, err := repo.payoutColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error completing payout %s manually: %w", payoutID, err)
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "payout", ID: payoutID}
	}
	return nil
}

func (repo *MongoPayoutRepo) Requeue(ctx context.Context, payoutID string, nextAt time.Time, reason string, at time.Time) error {
	filter := bson.M{"id": payoutID, "status": models.PayoutProcessing}
	update := bson.M{"$set": bson.M{
		"status":         models.PayoutScheduled,
		"scheduled_at":   nextAt,
		"failure_reason": reason,
		"updated_at":     at,
	}}
	res, err := repo.payoutColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error requeueing payout %s: %w", payoutID, err)
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "payout", ID: payoutID}
	}
	return nil
}

func (repo *MongoPayoutRepo) MarkFailed(ctx context.Context, payoutID, reason string, at time.Time) error {
	filter := bson.M{"id": payoutID, "status": models.PayoutProcessing}
	update := bson.M{"$set": bson.M{
		"status":         models.PayoutFailed,
		"failure_reason": reason,
		"updated_at":     at,
	}}
	res, err := repo.payoutColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error failing payout %s: %w", payoutID, err)
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "payout", ID: payoutID}
	}
	return nil
}

func (repo *MongoPayoutRepo) Reschedule(ctx context.Context, payoutID string, nextAt time.Time, reason string, at time.Time) error {
	filter := bson.M{"id": payoutID, "status": models.PayoutProcessing}
	update := bson.M{
		"$set": bson.M{
			"status":         models.PayoutScheduled,
			"scheduled_at":   nextAt,
			"failure_reason": reason,
			"updated_at":     at,
		},
		"$inc": bson.M{"retry_count": 1},
	}
	res, err := repo.payoutColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error rescheduling payout %s: %w", payoutID, err)
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "payout", ID: payoutID}
	}
	return nil
}

func (repo *MongoPayoutRepo) GetByID(ctx context.Context, payoutID string) (*models.PayoutSchedule, error) {
	var schedule models.PayoutSchedule
	if err := repo.payoutColl.FindOne(ctx, bson.M{"id": payoutID}).Decode(&schedule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "payout", ID: payoutID}
		}
		return nil, fmt.Errorf("error fetching payout %s: %w", payoutID, err)
	}
	return &schedule, nil
}

func (repo *MongoPayoutRepo) GetByBooking(ctx context.Context, bookingID string) (*models.PayoutSchedule, error) {
	var schedule models.PayoutSchedule
	if err := repo.payoutColl.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&schedule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "payout", ID: bookingID}
		}
		return nil, fmt.Errorf("error fetching payout for booking %s: %w", bookingID, err)
	}
	return &schedule, nil
}

func (repo *MongoPayoutRepo) ListByProvider(ctx context.Context, providerID string) ([]models.PayoutSchedule, error) {
	filter := bson.M{"provider_id": providerID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.payoutColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing payouts for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var schedules []models.PayoutSchedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("error decoding payout schedules: %w", err)
	}
	return schedules, nil
}
