package interaction

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quiz-session-service/internal/models"
	"quiz-session-service/internal/quizerr"

	"github.com/redis/go-redis/v9"
)

const sidecarTTL = 24 * time.Hour

// SidecarStore keeps confidence ratings, bookmarks and feature toggles in
// Redis, keyed by user and session. This data is deliberately separate from
// the session document: it can expire or be flushed without any effect on
// answers, timing or score.
type SidecarStore struct {
	rdb *redis.Client
}

func NewSidecarStore(rdb *redis.Client) *SidecarStore {
	return &SidecarStore{rdb: rdb}
}

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("interaction:%s:%s", userID, sessionID)
}

func prefsKey(userID string) string {
	return fmt.Sprintf("interaction:%s:prefs", userID)
}

// SetConfidence records a 1..5 self-rating for one question.
func (s *SidecarStore) SetConfidence(ctx context.Context, userID, sessionID, questionID string, rating int) error {
	if rating < models.ConfidenceMin || rating > models.ConfidenceMax {
		return quizerr.ErrOutOfRange
	}
	key := sessionKey(userID, sessionID)
	if err := s.rdb.HSet(ctx, key, "confidence:"+questionID, rating).Err(); err != nil {
		return quizerr.Transient("sidecar.confidence", err)
	}
	s.rdb.Expire(ctx, key, sidecarTTL)
	return nil
}

// SetBookmark toggles the bookmark flag for one question.
func (s *SidecarStore) SetBookmark(ctx context.Context, userID, sessionID, questionID string, on bool) error {
	key := sessionKey(userID, sessionID)
	var err error
	if on {
		err = s.rdb.HSet(ctx, key, "bookmark:"+questionID, 1).Err()
	} else {
		err = s.rdb.HDel(ctx, key, "bookmark:"+questionID).Err()
	}
	if err != nil {
		return quizerr.Transient("sidecar.bookmark", err)
	}
	s.rdb.Expire(ctx, key, sidecarTTL)
	return nil
}

// Snapshot returns everything the sidecar holds for one session, plus the
// user's preferences.
func (s *SidecarStore) Snapshot(ctx context.Context, userID, sessionID string) (*models.InteractionSnapshot, error) {
	fields, err := s.rdb.HGetAll(ctx, sessionKey(userID, sessionID)).Result()
	if err != nil {
		return nil, quizerr.Transient("sidecar.snapshot", err)
	}

	snap := &models.InteractionSnapshot{
		Confidence: make(map[string]int),
		Bookmarks:  []string{},
	}
	for field, value := range fields {
		switch {
		case strings.HasPrefix(field, "confidence:"):
			if rating, err := strconv.Atoi(value); err == nil {
				snap.Confidence[strings.TrimPrefix(field, "confidence:")] = rating
			}
		case strings.HasPrefix(field, "bookmark:"):
			snap.Bookmarks = append(snap.Bookmarks, strings.TrimPrefix(field, "bookmark:"))
		}
	}

	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap.Preferences = prefs
	return snap, nil
}

func (s *SidecarStore) SetPreferences(ctx context.Context, userID string, prefs models.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, prefsKey(userID), data, 0).Err(); err != nil {
		return quizerr.Transient("sidecar.preferences", err)
	}
	return nil
}

func (s *SidecarStore) GetPreferences(ctx context.Context, userID string) (models.Preferences, error) {
	raw, err := s.rdb.Get(ctx, prefsKey(userID)).Bytes()
	if err == redis.Nil {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, quizerr.Transient("sidecar.preferences", err)
	}
	var prefs models.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return models.DefaultPreferences(), nil
	}
	return prefs, nil
}
