package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"bookify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithTx runs fn inside a Mongo multi-document transaction. The session is
// carried on the context handed to fn, so every repository call made with it
// participates in the same transaction.
func (repo *MongoBookingRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}
	return nil
}

// InsertClaims inserts one claim document per minute of the booking's range.
// The unique (provider_id, date, start) index guarantees that two
// transactions claiming overlapping ranges cannot both commit, while
// adjacent ranges never collide.
func (repo *MongoBookingRepo) InsertClaims(ctx context.Context, booking *models.Booking) error {
	minutes := models.ClaimMinutes(booking.Start, booking.End)
	docs := make([]interface{}, 0, len(minutes))
	for _, m := range minutes {
		docs = append(docs, models.SlotClaim{
			ProviderID: booking.ProviderID,
			Date:       booking.Date,
			Start:      m,
			BookingID:  booking.ID,
		})
	}
	if _, err := repo.claimColl.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrClaimTaken
		}
		return fmt.Errorf("error inserting slot claims: %w", err)
	}
	return nil
}

func (repo *MongoBookingRepo) InsertBooking(ctx context.Context, booking *models.Booking) error {
	if _, err := repo.bookingColl.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &models.ConflictError{Reason: "booking id or confirmation code already exists"}
		}
		return fmt.Errorf("error inserting booking: %w", err)
	}
	return nil
}

func (repo *MongoBookingRepo) DeleteClaims(ctx context.Context, bookingID string) error {
	if _, err := repo.claimColl.DeleteMany(ctx, bson.M{"booking_id": bookingID}); err != nil {
		return fmt.Errorf("error deleting slot claims for booking %s: %w", bookingID, err)
	}
	return nil
}

// UpdateStatusCAS applies a status change only when the stored status still
// equals the expected one, so concurrent state machines cannot interleave.
func (repo *MongoBookingRepo) UpdateStatusCAS(ctx context.Context, bookingID string, from, to models.BookingStatus, fx TransitionEffects, at time.Time) error {
	set := bson.M{
		"status":     to,
		"updated_at": at,
	}
	if fx.CancelledAt != nil {
		set["cancelled_at"] = *fx.CancelledAt
		set["cancelled_by"] = fx.CancelledBy
		set["cancellation_reason"] = fx.CancellationReason
	}
	if fx.CancellationFee != nil {
		set["cancellation_fee"] = *fx.CancellationFee
	}
	if fx.CompletedAt != nil {
		set["completed_at"] = *fx.CompletedAt
	}

	filter := bson.M{"id": bookingID, "status": from}
	res, err := repo.bookingColl.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error updating booking status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (repo *MongoBookingRepo) InsertTransition(ctx context.Context, rec *models.BookingStateTransition) error {
	if _, err := repo.transitionColl.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("error inserting state transition: %w", err)
	}
	return nil
}
