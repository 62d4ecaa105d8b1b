package models

import "time"

// Session modes.
const (
	ModeQuick  = "quick"
	ModeTimed  = "timed"
	ModeCustom = "custom"
)

// Session statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// QuizSession is the authoritative session record. Answers is index-aligned
// with QuestionIDs and always the same length; a nil slot is unanswered.
type QuizSession struct {
	ID               string     `bson:"_id,omitempty" json:"id"`
	UserID           string     `bson:"user_id" json:"user_id"`
	Mode             string     `bson:"mode" json:"mode"`
	QuestionIDs      []string   `bson:"question_ids" json:"question_ids"`
	Answers          []*int     `bson:"answers" json:"answers"`
	TimeSpentSeconds int        `bson:"time_spent_seconds" json:"time_spent_seconds"`
	Score            int        `bson:"score" json:"score"`
	Status           string     `bson:"status" json:"status"`
	SessionToken     string     `bson:"session_token" json:"session_token"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	CompletedAt      *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

func ValidMode(m string) bool {
	switch m {
	case ModeQuick, ModeTimed, ModeCustom:
		return true
	}
	return false
}

// AnsweredCount returns how many slots hold a recorded answer.
func (s *QuizSession) AnsweredCount() int {
	n := 0
	for _, a := range s.Answers {
		if a != nil {
			n++
		}
	}
	return n
}

// Answered reports whether the slot at index holds an answer.
func (s *QuizSession) Answered(index int) bool {
	return index >= 0 && index < len(s.Answers) && s.Answers[index] != nil
}
