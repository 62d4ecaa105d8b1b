package repository

import (
	"context"
	"fmt"
	"time"

	"quiz-session-service/internal/models"
	"quiz-session-service/internal/quizerr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("sessions")}
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.QuizSession, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, quizerr.ErrNotFound
	}
	var session models.QuizSession
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, quizerr.ErrNotFound
	}
	if err != nil {
		return nil, quizerr.Transient("session.find", err)
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.QuizSession) error {
	res, err := r.Col.InsertOne(ctx, session)
	if err != nil {
		return quizerr.Transient("session.create", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

// RecordAnswer writes one answer slot and replaces the elapsed-time
// accumulator in a single conditional update. The status filter makes
// completed sessions immutable at the store layer, not just at the service
// layer: a matched count of zero means the session is gone or no longer
// active, and the caller distinguishes the two with a follow-up read.
func (r *SessionRepository) RecordAnswer(ctx context.Context, id string, questionIndex, answerIndex, elapsedSeconds int) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return quizerr.ErrNotFound
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.StatusActive},
		bson.M{"$set": bson.M{
			fmt.Sprintf("answers.%d", questionIndex): answerIndex,
			"time_spent_seconds":                     elapsedSeconds,
		}},
	)
	if err != nil {
		return quizerr.Transient("session.record_answer", err)
	}
	if res.MatchedCount == 0 {
		return r.missingOrInactive(ctx, objID)
	}
	return nil
}

// MarkCompleted freezes the session: score and completed_at are written
// exactly once because the filter only matches active sessions.
func (r *SessionRepository) MarkCompleted(ctx context.Context, id string, score, finalElapsedSeconds int, completedAt time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return quizerr.ErrNotFound
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.StatusActive},
		bson.M{"$set": bson.M{
			"status":             models.StatusCompleted,
			"score":              score,
			"time_spent_seconds": finalElapsedSeconds,
			"completed_at":       completedAt,
		}},
	)
	if err != nil {
		return quizerr.Transient("session.mark_completed", err)
	}
	if res.MatchedCount == 0 {
		return r.missingOrInactive(ctx, objID)
	}
	return nil
}

func (r *SessionRepository) FindByUser(ctx context.Context, userID string) ([]models.QuizSession, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, quizerr.Transient("session.find_by_user", err)
	}
	defer cur.Close(ctx)
	var sessions []models.QuizSession
	for cur.Next(ctx) {
		var s models.QuizSession
		if err := cur.Decode(&s); err != nil {
			return nil, quizerr.Transient("session.find_by_user", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *SessionRepository) missingOrInactive(ctx context.Context, objID primitive.ObjectID) error {
	n, err := r.Col.CountDocuments(ctx, bson.M{"_id": objID})
	if err != nil {
		return quizerr.Transient("session.lookup", err)
	}
	if n == 0 {
		return quizerr.ErrNotFound
	}
	return quizerr.ErrInvalidState
}
