package database

import (
	"database/sql"
	"time"
)

// Sender values stored on chat turns.
const (
	SenderUser      = "user"
	SenderTherapist = "therapist"
)

// MoodObservation is one classified webcam frame: the dominant emotion label
// and its confidence, partitioned by the caller-supplied session identifier.
// Rows are append-only and never mutated.
type MoodObservation struct {
	ID         uint      `db:"id"         json:"-"`
	Emotion    string    `db:"emotion"    json:"emotion"`
	Confidence float64   `db:"confidence" json:"confidence"`
	Timestamp  time.Time `db:"timestamp"  json:"timestamp"`
	SessionID  string    `db:"session_id" json:"-"`
}

// ChatTurn is one side of a chat exchange. Mood carries the detected emotion
// context active when the message was sent, when known.
type ChatTurn struct {
	ID        uint           `db:"id"         json:"-"`
	Message   string         `db:"message"    json:"message"`
	Sender    string         `db:"sender"     json:"sender"`
	Mood      sql.NullString `db:"mood"       json:"-"`
	Timestamp time.Time      `db:"timestamp"  json:"timestamp"`
	SessionID string         `db:"session_id" json:"-"`
}

// Suggestion is the therapeutic content returned for a detection. MoodID
// links back to the mood observation the suggestion was generated for; it is
// nullable so the write still succeeds when the observation id is unknown.
type Suggestion struct {
	ID        uint          `db:"id"`
	MoodID    sql.NullInt64 `db:"mood_id"`
	Emotion   string        `db:"emotion"`
	Message   string        `db:"message"`
	Tip       string        `db:"tip"`
	Activity  string        `db:"activity"`
	Sound     string        `db:"sound"`
	Timestamp time.Time     `db:"timestamp"`
}
