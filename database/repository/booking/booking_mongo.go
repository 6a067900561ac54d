package bookingRepo

import (
	"context"
	"errors"
	"fmt"

	"bookify/database"
	"bookify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl    *mongo.Collection
	claimColl      *mongo.Collection
	transitionColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	return &MongoBookingRepo{
		bookingColl:    db.Collection("bookings"),
		claimColl:      db.Collection("slot_claims"),
		transitionColl: db.Collection("booking_transitions"),
	}
}

// blockingStatuses excludes statuses that no longer occupy the slot.
func blockingStatuses() bson.A {
	return bson.A{
		models.BookingPending,
		models.BookingConfirmed,
		models.BookingInProgress,
		models.BookingCompleted,
		models.BookingNoShow,
		models.BookingPaymentFailed,
	}
}

// FindBlocking applies the three overlap cases: the new range starts inside an
// existing booking, ends inside one, or fully contains one.
func (repo *MongoBookingRepo) FindBlocking(ctx context.Context, providerID, date string, start, end int) (*models.Booking, error) {
	filter := bson.M{
		"provider_id": providerID,
		"date":        date,
		"status":      bson.M{"$in": blockingStatuses()},
		"$or": bson.A{
			// new start falls inside an existing booking
			bson.M{"start": bson.M{"$lte": start}, "end": bson.M{"$gt": start}},
			// new end falls inside an existing booking
			bson.M{"start": bson.M{"$lt": end}, "end": bson.M{"$gte": end}},
			// new range fully contains an existing booking
			bson.M{"start": bson.M{"$gte": start}, "end": bson.M{"$lte": end}},
		},
	}
	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding blocking booking: %w", err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctx, bson.M{"id": bookingID}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, fmt.Errorf("error fetching booking with id %s: %w", bookingID, err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) GetByConfirmationCode(ctx context.Context, code string) (*models.Booking, error) {
	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctx, bson.M{"confirmation_code": code}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "booking", ID: code}
		}
		return nil, fmt.Errorf("error fetching booking with confirmation code %s: %w", code, err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) ListForDate(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	filter := bson.M{"provider_id": providerID, "date": date}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	filter := bson.M{"customer_id": customerID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing customer bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding customer bookings: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) ListTransitions(ctx context.Context, bookingID string) ([]models.BookingStateTransition, error) {
	filter := bson.M{"booking_id": bookingID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := repo.transitionColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing transitions: %w", err)
	}
	defer cursor.Close(ctx)

	var transitions []models.BookingStateTransition
	if err := cursor.All(ctx, &transitions); err != nil {
		return nil, fmt.Errorf("error decoding transitions: %w", err)
	}
	return transitions, nil
}
