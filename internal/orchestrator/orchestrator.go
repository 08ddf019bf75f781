// Package orchestrator wires every scorer, defense layer, and persistence
// call into the three public entry points that drive the engine:
// ProcessExperience, ProcessFollowUp, and SubmitArtifact, plus the two
// read-only supplemental operations GetDueQuestions and PredictResonance.
//
// Events for the same user are serialized by a per-user mutex held across
// each load-mutate-persist cycle; events for different users run
// concurrently. No other component in this tree holds a lock spanning a
// Storage call.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/intention"
	"github.com/chusla/improvement-axiom/internal/lineage"
	"github.com/chusla/improvement-axiom/internal/logging"
	"github.com/chusla/improvement-axiom/internal/metrics"
	"github.com/chusla/improvement-axiom/internal/propagation"
	"github.com/chusla/improvement-axiom/internal/quality"
	"github.com/chusla/improvement-axiom/internal/question"
	"github.com/chusla/improvement-axiom/internal/resonance"
	"github.com/chusla/improvement-axiom/internal/safety"
	"github.com/chusla/improvement-axiom/internal/semantic"
	"github.com/chusla/improvement-axiom/internal/storage"
	"github.com/chusla/improvement-axiom/internal/temporal"
	"github.com/chusla/improvement-axiom/internal/vectortracker"
	"github.com/chusla/improvement-axiom/internal/webclient"
)

// Orchestrator holds every wired component and the per-user serialization
// primitives. It owns no Trajectory state itself — Storage does — except
// for pending questions, which have no Storage-level persistence contract
// and live only for the process lifetime.
type Orchestrator struct {
	store      storage.Storage
	webClient  webclient.WebClient
	vectors    *vectortracker.Tracker
	lineage    *lineage.Tracker
	propagate  *propagation.Tracker
	external   *safety.ExternalValidator
	predictor  *resonance.Predictor
	metrics    *metrics.Collector
	logger     zerolog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	questionsMu      sync.Mutex
	pendingQuestions map[string][]core.PendingQuestion

	artifactGroup singleflight.Group
}

// New wires the full pipeline around store. webClient, semanticIndex, and
// lineageReplica may all be nil; every defense layer that depends on them
// degrades gracefully.
func New(store storage.Storage, webClient webclient.WebClient, semanticIndex *semantic.Index, lineageReplica propagation.Replica, logger zerolog.Logger) *Orchestrator {
	lineageTracker := lineage.NewTracker()
	var predictor *resonance.Predictor
	if semanticIndex != nil {
		predictor = resonance.NewPredictor(semanticIndex)
	}
	return &Orchestrator{
		store:            store,
		webClient:        webClient,
		vectors:          vectortracker.New(store),
		lineage:          lineageTracker,
		propagate:        propagation.New(lineageTracker, lineageReplica),
		external:         safety.NewExternalValidator(webClient),
		predictor:        predictor,
		metrics:          metrics.NewCollector(),
		logger:           logger,
		locks:            make(map[string]*sync.Mutex),
		pendingQuestions: make(map[string][]core.PendingQuestion),
	}
}

// Metrics returns the orchestrator's operational-metrics collector, so
// callers (health endpoints, alerting) can read quality/classification/latency
// trends without reaching into scoring internals. No resonance score is
// recorded into it.
func (o *Orchestrator) Metrics() *metrics.Collector {
	return o.metrics
}

// userLock returns (creating if necessary) the mutex serializing events for
// userID. Grown lazily, never shrunk — a per-process map of per-user locks.
func (o *Orchestrator) userLock(userID string) *sync.Mutex {
	o.locksMu.Lock()
	defer o.locksMu.Unlock()
	l, ok := o.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[userID] = l
	}
	return l
}

// ProcessExperience records a new experience and runs the full scoring
// pipeline over it: quality, resonance, intention, temporal evaluation,
// validated resonance, matrix position, drift and health checks, pending
// questions, recommendations, and (if a web client is configured)
// extrapolated trajectory evidence.
func (o *Orchestrator) ProcessExperience(ctx context.Context, userID, description string, rating float64, contextStr string) (*core.Assessment, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if description == "" {
		return nil, ErrEmptyDescription
	}
	if rating < 0 || rating > 1 {
		return nil, ErrInvalidRating
	}

	log := logging.FromContext(ctx)
	if log.GetLevel() == zerolog.Disabled {
		log = o.logger
	}

	lock := o.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	log.Debug().Str("user_id", userID).Msg("vectors.RecordExperience")
	exp, traj, err := o.vectors.RecordExperience(ctx, userID, description, contextStr, "", rating)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: process experience: %w", err)
	}

	var notes []string
	assessment, err := o.scoreAndPersist(ctx, log, exp, traj, true, &notes)
	if err != nil {
		return nil, err
	}
	return assessment, nil
}

// ProcessFollowUp appends a follow-up to an existing experience and
// re-runs the scoring pipeline (excluding question generation — follow-ups
// never spawn new pending questions). Returns (nil, nil) when expId does
// not name an experience of userID's trajectory, matching the source's
// "no assessment" semantics for unknown experiences.
func (o *Orchestrator) ProcessFollowUp(ctx context.Context, userID, expID string, followUp core.FollowUp) (*core.Assessment, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	log := logging.FromContext(ctx)
	if log.GetLevel() == zerolog.Disabled {
		log = o.logger
	}

	lock := o.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	log.Debug().Str("user_id", userID).Str("experience_id", expID).Msg("vectors.RecordFollowUp")
	exp, traj, err := o.vectors.RecordFollowUp(ctx, userID, expID, followUp)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: process follow-up: %w", err)
	}
	if exp == nil {
		return nil, nil
	}

	if followUp.CreatedSomething {
		exp.Propagated = true
		if followUp.CreationDescription != "" {
			exp.PropagationEvents = append(exp.PropagationEvents, followUp.CreationDescription)
		}
		o.propagate.RecordCreationEvent(ctx, propagation.CreationEvent{
			UserID:                 userID,
			ExperienceID:           exp.ID,
			FollowUpID:             followUp.ID,
			Description:            followUp.CreationDescription,
			Timestamp:              followUp.Timestamp,
			InspiredByExperienceID: exp.ID,
		})
		traj.PropagationRate = propagation.ComputePropagationRate(traj)
	}

	o.markAnswered(userID, exp.ID, followUp)

	var notes []string
	return o.scoreAndPersist(ctx, log, exp, traj, false, &notes)
}

// scoreAndPersist runs every downstream scorer and defense layer against
// exp/traj, builds the Assessment, and persists the trajectory. genQuestions
// controls whether new pending questions are generated (true for new
// experiences, false for follow-ups).
func (o *Orchestrator) scoreAndPersist(ctx context.Context, log zerolog.Logger, exp *core.Experience, traj *core.Trajectory, genQuestions bool, notes *[]string) (*core.Assessment, error) {
	started := time.Now()

	qualityScore, qualityDims := quality.Assess(exp, traj)
	exp.QualityScore = qualityScore
	exp.QualityDimensions = qualityDims

	exp.ResonanceScore = resonance.MeasureResonance(exp)

	signal, confidence := intention.Classify(exp, traj)
	exp.ProvisionalIntention = signal
	exp.IntentionConfidence = confidence

	exp.HorizonAssessments = temporal.Evaluate(exp, traj)
	arcTrend := temporal.ComputeArcTrend(exp.HorizonAssessments)

	exp.ResonanceScore = resonance.Validate(exp, traj)

	position := matrixPosition(exp.QualityScore, signal)
	exp.MatrixPosition = position

	driftValid, driftReason := safety.ValidateClassification(exp, traj)
	healthy, healthReason := safety.CheckOuroborosHealth(traj)

	var pendingQs []core.PendingQuestion
	if genQuestions {
		pendingQs = question.GenerateQuestions(exp, traj)
		o.questionsMu.Lock()
		o.pendingQuestions[exp.UserID] = append(o.pendingQuestions[exp.UserID], pendingQs...)
		o.questionsMu.Unlock()
	}

	recs := buildRecommendations(position, driftValid, driftReason, healthy, healthReason)

	log.Debug().Str("user_id", exp.UserID).Msg("external.Extrapolate")
	ev := o.external.Extrapolate(ctx, exp, traj)
	evidence := &ev
	if !o.external.HasWebAccess() {
		*notes = append(*notes, "web access unavailable: trajectory evidence omitted")
	}

	o.requestSupplementalEvidence(ctx, log, exp)

	o.metrics.RecordAssessment(exp.QualityScore, string(signal), time.Since(started))

	if err := o.store.SaveTrajectory(ctx, traj); err != nil {
		log.Error().Err(err).Str("user_id", exp.UserID).Msg("save trajectory failed after scoring")
		return nil, fmt.Errorf("orchestrator: persist scored trajectory: %w", err)
	}

	assessment := &core.Assessment{
		Experience:       exp,
		Trajectory:       traj,
		PendingQuestions: pendingQs,
		ArcTrend:         arcTrend,
		Recommendations:  recs,
		Explanation: core.Explanation{
			Intention: core.IntentionExplanation{
				Signal:        signal,
				Confidence:    confidence,
				IsProvisional: confidence < 0.5,
				Note:          provisionalNote(confidence),
			},
			Quality: core.QualityExplanation{
				Score:      exp.QualityScore,
				Dimensions: exp.QualityDimensions,
			},
			Resonance: core.ResonanceExplanation{
				ValidatedScore: exp.ResonanceScore,
			},
			Vector: core.VectorExplanation{
				Direction:    traj.CurrentVector.Direction,
				Magnitude:    traj.CurrentVector.Magnitude,
				Confidence:   traj.CurrentVector.Confidence,
				Compounding:  traj.CompoundingDirection,
				CreationRate: traj.CreationRate,
			},
			Temporal: core.TemporalExplanation{
				HorizonsWithData: horizonsWithData(exp.HorizonAssessments),
				TotalHorizons:    5,
				Note:             string(arcTrend),
			},
			DriftCheck: core.DriftExplanation{
				Valid:   driftValid,
				Message: driftReason,
			},
			OuroborosHealth: core.OuroborosExplanation{
				Healthy: healthy,
				Message: healthReason,
			},
			MatrixPosition: position,
		},
		TrajectoryEvidence: evidence,
		IsProvisional:      confidence < 0.5,
		DegradationNotes:   *notes,
	}
	return assessment, nil
}

// markAnswered links followUp to the earliest unanswered pending question
// for expID, if one exists. Purely explanatory bookkeeping; scoring never
// depends on it.
func (o *Orchestrator) markAnswered(userID, expID string, followUp core.FollowUp) {
	o.questionsMu.Lock()
	defer o.questionsMu.Unlock()
	for i, q := range o.pendingQuestions[userID] {
		if q.ExperienceID == expID && q.AnsweredBy == nil {
			f := followUp
			o.pendingQuestions[userID][i].Asked = true
			o.pendingQuestions[userID][i].AnsweredBy = &f
			return
		}
	}
}

// SubmitArtifact verifies a user-presented URL as evidence of creation and,
// if verified, marks the experience propagated. Concurrent identical
// (userId, url) submissions collapse into a single WebClient fetch via
// singleflight.
func (o *Orchestrator) SubmitArtifact(ctx context.Context, userID, expID, url, claim, platform string) (core.ArtifactVerification, error) {
	if userID == "" {
		return core.ArtifactVerification{}, ErrEmptyUserID
	}

	log := logging.FromContext(ctx)
	if log.GetLevel() == zerolog.Disabled {
		log = o.logger
	}

	key := userID + "|" + url
	result, err, _ := o.artifactGroup.Do(key, func() (interface{}, error) {
		lock := o.userLock(userID)
		lock.Lock()
		defer lock.Unlock()

		traj, err := o.store.LoadTrajectory(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: submit artifact: %w", err)
		}
		exp := traj.FindExperience(expID)
		if exp == nil {
			return core.ArtifactVerification{
				Status: core.ArtifactInaccessible,
				Notes:  "experience not found",
			}, nil
		}

		artifact := &core.Artifact{
			ID:           uuid.NewString(),
			ExperienceID: expID,
			UserID:       userID,
			URL:          url,
			Platform:     platform,
			UserClaim:    claim,
		}

		log.Debug().Str("user_id", userID).Str("url", url).Msg("external.VerifyArtifact")
		verification := o.external.VerifyArtifact(ctx, artifact, exp)

		if verification.Status == core.ArtifactVerified {
			exp.Propagated = true
			exp.PropagationEvents = append(exp.PropagationEvents, fmt.Sprintf("[Artifact verified] %s: %s", url, claim))
			o.propagate.RecordCreationEvent(ctx, propagation.CreationEvent{
				UserID:                 userID,
				ExperienceID:           exp.ID,
				FollowUpID:             artifact.ID,
				Description:            claim,
				Timestamp:              time.Now().UTC(),
				InspiredByExperienceID: exp.ID,
			})
			traj.PropagationRate = propagation.ComputePropagationRate(traj)
			if err := o.store.SaveTrajectory(ctx, traj); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("save trajectory failed after artifact verification")
				return nil, fmt.Errorf("orchestrator: persist artifact verification: %w", err)
			}
		}
		return verification, nil
	})
	if err != nil {
		return core.ArtifactVerification{}, err
	}
	return result.(core.ArtifactVerification), nil
}

// GetDueQuestions returns every pending question, across every user, whose
// AskAfter has passed as of asOf and that has not yet been asked. Read-only.
func (o *Orchestrator) GetDueQuestions(ctx context.Context, asOf time.Time) []core.PendingQuestion {
	o.questionsMu.Lock()
	defer o.questionsMu.Unlock()

	var due []core.PendingQuestion
	for _, qs := range o.pendingQuestions {
		due = append(due, question.GetDueQuestions(qs, asOf)...)
	}
	return due
}

// PredictResonance estimates how strongly a not-yet-lived candidate
// experience would resonate, based on semantic similarity to the user's
// past experiences. Returns (0, nil, nil) if no semantic index was wired.
func (o *Orchestrator) PredictResonance(ctx context.Context, userID, candidateDescription string) (float64, []string, error) {
	if o.predictor == nil {
		return 0, nil, nil
	}
	return o.predictor.PredictResonance(ctx, userID, candidateDescription)
}

func provisionalNote(confidence float64) string {
	if confidence < 0.5 {
		return "the picture is still forming"
	}
	return "evidence is sufficient for a confident read"
}

func horizonsWithData(assessments []core.HorizonAssessment) int {
	n := 0
	for _, a := range assessments {
		if a.Score != nil {
			n++
		}
	}
	return n
}

// requestSupplementalEvidence best-effort requests agent-mediated quality
// evidence for exp via the WebClient's optional RequestEvidence surface.
// Never fails the pipeline: a false "ok" (no support) or an empty response
// is simply logged at debug and otherwise ignored, per the WebClient
// interface's "only the fields relevant to Type are populated" contract.
func (o *Orchestrator) requestSupplementalEvidence(ctx context.Context, log zerolog.Logger, exp *core.Experience) {
	if o.webClient == nil {
		return
	}
	resp, ok := o.webClient.RequestEvidence(ctx, webclient.EvidenceRequest{
		Type:  webclient.EvidenceQualityEvidence,
		Query: exp.Description,
		Context: map[string]any{
			"quality_score": exp.QualityScore,
			"user_rating":   exp.UserRating,
		},
	})
	if !ok || !resp.Success {
		log.Debug().Str("experience_id", exp.ID).Msg("no agent-mediated quality evidence available")
		return
	}
	log.Debug().Str("experience_id", exp.ID).Float64("confidence", resp.Confidence).Msg("received agent-mediated quality evidence")
}
