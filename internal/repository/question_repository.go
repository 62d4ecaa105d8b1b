package repository

import (
	"context"

	"quiz-session-service/internal/models"
	"quiz-session-service/internal/quizerr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// QuestionRepository reads the question collection published by the content
// service. This engine never writes to it.
type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err == mongo.ErrNoDocuments {
		return nil, quizerr.ErrNotFound
	}
	if err != nil {
		return nil, quizerr.Transient("question.find", err)
	}
	return &question, nil
}

// FindByIDs batch-fetches questions and returns them in the order of ids.
// A missing id is ErrNotFound: scoring against a partial join would silently
// misgrade the session.
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	cur, err := r.Col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, quizerr.Transient("question.find_by_ids", err)
	}
	defer cur.Close(ctx)

	byID := make(map[string]models.Question, len(ids))
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, quizerr.Transient("question.find_by_ids", err)
		}
		byID[q.ID] = q
	}

	ordered := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, quizerr.ErrNotFound
		}
		ordered = append(ordered, q)
	}
	return ordered, nil
}

func (r *QuestionRepository) FindFiltered(ctx context.Context, category, difficulty string) ([]models.Question, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if difficulty != "" {
		filter["difficulty"] = difficulty
	}

	cur, err := r.Col.Find(ctx, filter)
	if err != nil {
		return nil, quizerr.Transient("question.find_filtered", err)
	}
	defer cur.Close(ctx)

	var questions []models.Question
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, quizerr.Transient("question.find_filtered", err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}
