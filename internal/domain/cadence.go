package domain

import "time"

// CycleType distinguishes the two gated cycle kinds.
type CycleType string

const (
	CycleScan    CycleType = "scan"
	CycleRoutine CycleType = "routine"
)

// Body regions tracked by cadence and streak records.
const (
	PartFace  = "face"
	PartMouth = "mouth"
	PartHair  = "hair"
	PartBody  = "body"
)

// CyclePart is the per-region cadence entry: the earliest date a new cycle
// may begin for that region.
type CyclePart struct {
	Part string    `bson:"part" json:"part"`
	Date time.Time `bson:"date" json:"date"`
}

// NextAction gates how often a user may start a new cycle. One record per
// user and cycle type; Date is always the minimum of the per-part dates.
type NextAction struct {
	ID     string      `bson:"_id,omitempty" json:"id"`
	UserID string      `bson:"userId" json:"userId"`
	Type   CycleType   `bson:"type" json:"type"`
	Date   time.Time   `bson:"date" json:"date"`
	Parts  []CyclePart `bson:"parts" json:"parts"`
}

// Streaks holds the consecutive-completion counters per body region.
type Streaks struct {
	FaceStreak  int `bson:"faceStreak" json:"faceStreak"`
	MouthStreak int `bson:"mouthStreak" json:"mouthStreak"`
	HairStreak  int `bson:"hairStreak" json:"hairStreak"`
	BodyStreak  int `bson:"bodyStreak" json:"bodyStreak"`
}

// StreakState is the per-user streak record: the counters plus the last
// local-midnight date each counter was advanced, keyed by part.
type StreakState struct {
	UserID      string               `bson:"userId" json:"userId"`
	Streaks     Streaks              `bson:"streaks" json:"streaks"`
	StreakDates map[string]time.Time `bson:"streakDates,omitempty" json:"streakDates,omitempty"`
}

// StreakField maps a body region to its counter field name in the user
// document. Returns false for unknown regions.
func StreakField(part string) (string, bool) {
	switch part {
	case PartFace:
		return "streaks.faceStreak", true
	case PartMouth:
		return "streaks.mouthStreak", true
	case PartHair:
		return "streaks.hairStreak", true
	case PartBody:
		return "streaks.bodyStreak", true
	default:
		return "", false
	}
}
