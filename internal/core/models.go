// Package core defines the data structures shared by every component of the
// behavioral-trajectory inference engine: experiences, follow-ups, vector
// snapshots, trajectories, pending questions, artifacts, and assessments.
//
// Key types:
//   - Experience: one recorded moment, owned exclusively by one Trajectory
//   - FollowUp: evidence of what an Experience led to, append-only
//   - VectorSnapshot: a point-in-time (direction, magnitude, confidence) triple
//   - Trajectory: the per-user ordered history plus derived aggregate statistics
//   - Assessment: the strongly-typed result returned by the orchestrator
package core

import "time"

// IntentionSignal is the discrete classification of a trajectory's or
// experience's inferred intent.
type IntentionSignal string

const (
	CreativeIntent    IntentionSignal = "CREATIVE_INTENT"
	ConsumptiveIntent IntentionSignal = "CONSUMPTIVE_INTENT"
	MixedIntent       IntentionSignal = "MIXED"
	PendingIntent     IntentionSignal = "PENDING"
)

// TimeHorizon is one of the five fixed evaluation windows.
type TimeHorizon string

const (
	HorizonImmediate    TimeHorizon = "immediate"
	HorizonShortTerm    TimeHorizon = "short_term"
	HorizonMediumTerm   TimeHorizon = "medium_term"
	HorizonLongTerm     TimeHorizon = "long_term"
	HorizonGenerational TimeHorizon = "generational"
)

// HorizonDuration returns the nominal offset from an experience's timestamp
// that defines the window named by horizon. GENERATIONAL returns a nominal
// 365 days.
func HorizonDuration(h TimeHorizon) time.Duration {
	switch h {
	case HorizonImmediate:
		return 0
	case HorizonShortTerm:
		return 24 * time.Hour
	case HorizonMediumTerm:
		return 14 * 24 * time.Hour
	case HorizonLongTerm:
		return 90 * 24 * time.Hour
	case HorizonGenerational:
		return 365 * 24 * time.Hour
	default:
		return 0
	}
}

// horizonOrder maps a horizon to its position for sort/compare purposes.
var horizonOrder = map[TimeHorizon]int{
	HorizonImmediate:    0,
	HorizonShortTerm:    1,
	HorizonMediumTerm:   2,
	HorizonLongTerm:     3,
	HorizonGenerational: 4,
}

// HorizonOrder returns h's position among the five fixed horizons, for sorting.
func HorizonOrder(h TimeHorizon) int {
	return horizonOrder[h]
}

// ArcTrend describes the direction of change of horizon scores as the
// horizon widens.
type ArcTrend string

const (
	ArcImproving           ArcTrend = "improving"
	ArcDeclining           ArcTrend = "declining"
	ArcStable              ArcTrend = "stable"
	ArcInsufficientData    ArcTrend = "insufficient_data"
)

// ArtifactStatus is the outcome of verifying a user-submitted artifact URL.
type ArtifactStatus string

const (
	ArtifactVerified     ArtifactStatus = "verified"
	ArtifactUnverified   ArtifactStatus = "unverified"
	ArtifactSuspicious   ArtifactStatus = "suspicious"
	ArtifactInaccessible ArtifactStatus = "inaccessible"
)

// FollowUpSource tags where a FollowUp observation originated.
type FollowUpSource string

const (
	SourceUserResponse     FollowUpSource = "user_response"
	SourceBehavioral       FollowUpSource = "behavioral"
	SourceSystemObservation FollowUpSource = "system_observation"
)

// FollowUp is evidence of what an Experience led to. Owned exclusively by
// the Experience it follows up on; append-only once recorded.
type FollowUp struct {
	ID                    string         `json:"id"`
	ExperienceID          string         `json:"experience_id"`
	Timestamp             time.Time      `json:"timestamp"`
	Source                FollowUpSource `json:"source"`
	Text                  string         `json:"text"`
	CreatedSomething      bool           `json:"created_something"`
	SharedOrTaught        bool           `json:"shared_or_taught"`
	InspiredFurtherAction bool           `json:"inspired_further_action"`
	CreationMagnitude     float64        `json:"creation_magnitude"`
	CreationDescription   string         `json:"creation_description,omitempty"`
}

// EffectiveMagnitude returns CreationMagnitude, applying the backward
// compatibility rule: CreatedSomething true with a zero magnitude is
// treated as a full (1.0) magnitude creation.
func (f FollowUp) EffectiveMagnitude() float64 {
	if f.CreatedSomething && f.CreationMagnitude == 0 {
		return 1.0
	}
	return f.CreationMagnitude
}

// VectorSnapshot is a point-in-time (direction, magnitude, confidence)
// triple at a given horizon. Append-only: never mutated once written.
type VectorSnapshot struct {
	Timestamp  time.Time       `json:"timestamp"`
	Direction  float64         `json:"direction"`
	Magnitude  float64         `json:"magnitude"`
	Confidence float64         `json:"confidence"`
	Horizon    TimeHorizon     `json:"horizon"`
}

// HorizonAssessment is the evaluation of one experience at one fixed
// horizon. Score is nil when evidence for that horizon is not yet present.
type HorizonAssessment struct {
	Horizon TimeHorizon `json:"horizon"`
	Score   *float64    `json:"score"`
	Note    string      `json:"note,omitempty"`
}

// Experience is one recorded moment: a description, a self-reported rating,
// and everything the pipeline has derived about it so far. Exclusively
// owned by one Trajectory; mutated only by the pipeline for that user.
type Experience struct {
	ID                   string              `json:"id"`
	UserID               string              `json:"user_id"`
	Description          string              `json:"description"`
	Context              string              `json:"context"`
	UserRating           float64             `json:"user_rating"`
	Timestamp            time.Time           `json:"timestamp"`
	FollowUps            []FollowUp          `json:"follow_ups"`
	VectorSnapshots      []VectorSnapshot    `json:"vector_snapshots"`
	HorizonAssessments   []HorizonAssessment `json:"horizon_assessments"`
	ProvisionalIntention IntentionSignal     `json:"provisional_intention"`
	IntentionConfidence  float64             `json:"intention_confidence"`
	ResonanceScore       float64             `json:"resonance_score"`
	QualityScore         float64             `json:"quality_score"`
	QualityDimensions    map[string]float64  `json:"quality_dimensions"`
	Propagated           bool                `json:"propagated"`
	PropagationEvents    []string            `json:"propagation_events"`
	MatrixPosition       string              `json:"matrix_position"`
}

// CurrentVector returns the most recently recorded per-experience vector
// snapshot, or the zero value with ok=false if none exist yet.
func (e *Experience) CurrentVector() (VectorSnapshot, bool) {
	if len(e.VectorSnapshots) == 0 {
		return VectorSnapshot{}, false
	}
	return e.VectorSnapshots[len(e.VectorSnapshots)-1], true
}

// Trajectory is the per-user ordered history of Experiences plus derived
// aggregate statistics. Lifetime matches user lifetime in Storage.
type Trajectory struct {
	UserID              string           `json:"user_id"`
	Experiences         []*Experience    `json:"experiences"`
	CurrentVector       VectorSnapshot   `json:"current_vector"`
	VectorHistory       []VectorSnapshot `json:"vector_history"`
	CreationRate        float64          `json:"creation_rate"`
	PropagationRate     float64          `json:"propagation_rate"`
	CompoundingDirection float64         `json:"compounding_direction"`
}

// ExperienceCount returns the number of experiences recorded so far.
func (t *Trajectory) ExperienceCount() int {
	if t == nil {
		return 0
	}
	return len(t.Experiences)
}

// HasHistory reports whether the trajectory has at least one recorded
// aggregate vector snapshot.
func (t *Trajectory) HasHistory() bool {
	return t != nil && len(t.VectorHistory) > 0
}

// FindExperience returns the experience with the given id, or nil.
func (t *Trajectory) FindExperience(id string) *Experience {
	if t == nil {
		return nil
	}
	for _, e := range t.Experiences {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// PendingQuestion is a future-dated follow-up prompt created by the
// QuestionEngine on each new experience.
type PendingQuestion struct {
	ID           string      `json:"id"`
	ExperienceID string      `json:"experience_id"`
	UserID       string      `json:"user_id"`
	Text         string      `json:"text"`
	AskAfter     time.Time   `json:"ask_after"`
	Horizon      TimeHorizon `json:"horizon"`
	Asked        bool        `json:"asked"`
	AnsweredBy   *FollowUp   `json:"answered_by,omitempty"`
}

// Artifact is a user-presented URL offered as evidence of creation.
type Artifact struct {
	ID           string    `json:"id"`
	ExperienceID string    `json:"experience_id"`
	UserID       string    `json:"user_id"`
	URL          string    `json:"url"`
	Platform     string    `json:"platform"`
	UserClaim    string    `json:"user_claim"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// ArtifactVerification is the result of checking an Artifact against the
// web: existence, substance, timestamp plausibility, and relevance.
type ArtifactVerification struct {
	ArtifactID          string         `json:"artifact_id"`
	URLAccessible       bool           `json:"url_accessible"`
	ContentSummary      string         `json:"content_summary"`
	ContentSubstantive  bool           `json:"content_substantive"`
	TimestampPlausible  bool           `json:"timestamp_plausible"`
	RelevanceScore      float64        `json:"relevance_score"`
	VerifiedAt          time.Time      `json:"verified_at"`
	Status              ArtifactStatus `json:"status"`
	Notes               string         `json:"notes"`
}

// ExtrapolationHypothesis is one evidence-backed guess about where an
// action pattern typically leads, always paired with sources and an
// empowerment note — never prescriptive.
type ExtrapolationHypothesis struct {
	ActionPattern          string   `json:"action_pattern"`
	TypicalTrajectory      string   `json:"typical_trajectory"`
	ProbabilityEstimate    float64  `json:"probability_estimate"`
	DistinguishingFactors  []string `json:"distinguishing_factors"`
	NotableExceptions      []string `json:"notable_exceptions"`
	Sources                []string `json:"sources"`
	EmpowermentNote        string   `json:"empowerment_note"`
	Confidence             float64  `json:"confidence"`
}

// TrajectoryEvidence is the ExtrapolationModel's output: up to three
// hypotheses about where an action typically leads, backed by public
// sources, or an empty set with an explanatory note when evidence is thin.
type TrajectoryEvidence struct {
	Query             string                    `json:"query"`
	Hypotheses        []ExtrapolationHypothesis `json:"hypotheses"`
	SearchTimestamp   time.Time                 `json:"search_timestamp"`
	TotalSourcesFound int                       `json:"total_sources_found"`
	Note              string                    `json:"note"`
}

// IntentionExplanation is the intention-classification facet of an
// Assessment's explanation payload.
type IntentionExplanation struct {
	Signal        IntentionSignal `json:"signal"`
	Confidence    float64         `json:"confidence"`
	IsProvisional bool            `json:"is_provisional"`
	Note          string          `json:"note"`
}

// QualityExplanation is the quality-scoring facet of an Assessment's
// explanation payload.
type QualityExplanation struct {
	Score      float64            `json:"score"`
	Dimensions map[string]float64 `json:"dimensions"`
}

// ResonanceExplanation is the resonance-scoring facet of an Assessment's
// explanation payload.
type ResonanceExplanation struct {
	ValidatedScore float64 `json:"validated_score"`
}

// VectorExplanation is the vector-tracking facet of an Assessment's
// explanation payload.
type VectorExplanation struct {
	Direction    float64 `json:"direction"`
	Magnitude    float64 `json:"magnitude"`
	Confidence   float64 `json:"confidence"`
	Compounding  float64 `json:"compounding"`
	CreationRate float64 `json:"creation_rate"`
}

// TemporalExplanation is the temporal-evaluation facet of an Assessment's
// explanation payload.
type TemporalExplanation struct {
	HorizonsWithData int    `json:"horizons_with_data"`
	TotalHorizons    int    `json:"total_horizons"`
	Note             string `json:"note"`
}

// DriftExplanation reports whether OuroborosAnchor's classification check
// passed, and why.
type DriftExplanation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// OuroborosExplanation reports the aggregate creation/consumption cycle
// health check, and why.
type OuroborosExplanation struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message"`
}

// Explanation is the strongly-typed replacement for the source's
// dict-valued explanation bag: one nested struct per facet.
type Explanation struct {
	Intention       IntentionExplanation `json:"intention"`
	Quality         QualityExplanation   `json:"quality"`
	Resonance       ResonanceExplanation `json:"resonance"`
	Vector          VectorExplanation    `json:"vector"`
	Temporal        TemporalExplanation  `json:"temporal"`
	DriftCheck      DriftExplanation     `json:"drift_check"`
	OuroborosHealth OuroborosExplanation `json:"ouroboros_health"`
	MatrixPosition  string               `json:"matrix_position"`
}

// Assessment is the strongly-typed result returned by the orchestrator's
// ProcessExperience and ProcessFollowUp entry points.
type Assessment struct {
	Experience         *Experience         `json:"experience"`
	Trajectory         *Trajectory         `json:"trajectory"`
	PendingQuestions   []PendingQuestion   `json:"pending_questions"`
	ArcTrend           ArcTrend            `json:"arc_trend"`
	Recommendations    []string            `json:"recommendations"`
	Explanation        Explanation         `json:"explanation"`
	TrajectoryEvidence *TrajectoryEvidence `json:"trajectory_evidence,omitempty"`
	IsProvisional      bool                `json:"is_provisional"`
	DegradationNotes   []string            `json:"degradation_notes,omitempty"`
}

// Clamp restricts v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
