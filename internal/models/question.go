package models

// Difficulty tiers for exam questions.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is owned by the content service; this engine only reads it.
// CorrectAnswer indexes into Options.
type Question struct {
	ID            string   `bson:"_id,omitempty" json:"id"`
	Prompt        string   `bson:"prompt" json:"prompt"`
	Options       []string `bson:"options" json:"options"`
	CorrectAnswer int      `bson:"correct_answer" json:"correct_answer"`
	Explanation   string   `bson:"explanation" json:"explanation"`
	Category      string   `bson:"category" json:"category"`
	Difficulty    string   `bson:"difficulty" json:"difficulty"`
	References    []string `bson:"references,omitempty" json:"references,omitempty"`
}

// ValidDifficulty reports whether d names a known tier.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// PublicView strips the fields a client must not see before reveal.
type PublicView struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
}

func (q *Question) Public() PublicView {
	return PublicView{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Options:    q.Options,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
}
