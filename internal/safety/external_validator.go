package safety

import (
	"context"
	"fmt"
	"math"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/extrapolation"
	"github.com/chusla/improvement-axiom/internal/webclient"
)

// divergenceThreshold is the maximum tolerated gap between an AI assessment
// score and the average of the external observable checks before the
// validator reports a divergence.
const divergenceThreshold = 0.3

// forbiddenDimensions names identity-based attributes this system never
// compares by, under any circumstance. The engine evaluates actions and
// their outcomes, never individuals by identity.
var forbiddenDimensions = map[string]struct{}{
	"race": {}, "ethnicity": {}, "gender": {}, "sex": {}, "religion": {}, "creed": {},
	"political_affiliation": {}, "nationality": {}, "age_group": {},
	"socioeconomic_class": {}, "sexual_orientation": {}, "disability_status": {},
}

// ErrForbiddenDimension is returned when an observable context names an
// identity-based comparison dimension.
var ErrForbiddenDimension = fmt.Errorf("observable context must not contain identity attributes")

// ObservableContext carries only observable action data — never identity
// attributes — used for cross-checking an AI assessment.
type ObservableContext struct {
	FollowUps         []core.FollowUp
	PropagationEvents []string
	VectorDirection   float64
	VectorConfidence  float64
	ExtraDimensions   []string // named dimensions present in the caller's context, checked against forbiddenDimensions
}

// ExternalValidator cross-references the pipeline's own scores against
// independently observable evidence: artifact verification, trajectory
// consistency, and evidence-based extrapolation. It degrades gracefully
// to trajectory-only checks when no WebClient is configured.
type ExternalValidator struct {
	artifactVerifier   *ArtifactVerifier
	extrapolationModel *extrapolation.Model
	hasWebAccess       bool
}

// NewExternalValidator wraps an optional WebClient. A nil client (or a
// webclient.NoopClient) disables the web-dependent layers.
func NewExternalValidator(client webclient.WebClient) *ExternalValidator {
	v := &ExternalValidator{}
	if _, noop := client.(webclient.NoopClient); client != nil && !noop {
		v.artifactVerifier = NewArtifactVerifier(client)
		v.extrapolationModel = extrapolation.NewModel(client)
		v.hasWebAccess = true
	}
	return v
}

// HasWebAccess reports whether the validator can reach web-dependent layers.
func (v *ExternalValidator) HasWebAccess() bool {
	return v.hasWebAccess
}

// ValidateAgainstExternal checks aiQualityScore against a bundle of
// observable checks, guarding first against any forbidden identity
// dimension in observable.
func (v *ExternalValidator) ValidateAgainstExternal(observable ObservableContext, aiQualityScore float64) (status string, checks map[string]float64, err error) {
	if err := enforceNoIdentityAttributes(observable); err != nil {
		return "", nil, err
	}

	checks = map[string]float64{
		"action_outcome_consistency": checkActionOutcomes(observable),
		"creation_output_evidence":   checkCreationOutput(observable),
		"trajectory_consistency":     checkTrajectoryConsistency(observable),
		"environmental_context":      0.5,
	}

	if detectDivergence(aiQualityScore, checks) {
		return "Validation failure", checks, nil
	}
	return "Validated", checks, nil
}

// VerifyArtifact delegates to ArtifactVerifier; returns ArtifactInaccessible
// when web access is not configured, per §6/§7's degradation policy.
func (v *ExternalValidator) VerifyArtifact(ctx context.Context, artifact *core.Artifact, experience *core.Experience) core.ArtifactVerification {
	if v.artifactVerifier == nil {
		return core.ArtifactVerification{
			ArtifactID: artifact.ID,
			Status:     core.ArtifactInaccessible,
			Notes:      "web access not configured; artifact verification requires internet access",
		}
	}
	return v.artifactVerifier.Verify(ctx, artifact, experience)
}

// Extrapolate delegates to ExtrapolationModel; returns an empty
// TrajectoryEvidence with a degradation note when web access is unconfigured.
func (v *ExternalValidator) Extrapolate(ctx context.Context, experience *core.Experience, trajectory *core.Trajectory) core.TrajectoryEvidence {
	if v.extrapolationModel == nil {
		return core.TrajectoryEvidence{
			Query: experience.Description,
			Note:  "web access not configured; evidence-based extrapolation requires internet access. The system continues with other defence layers at lower confidence.",
		}
	}
	return v.extrapolationModel.Hypothesise(ctx, experience, trajectory)
}

func enforceNoIdentityAttributes(observable ObservableContext) error {
	for _, dim := range observable.ExtraDimensions {
		if _, forbidden := forbiddenDimensions[dim]; forbidden {
			return fmt.Errorf("%w: found %q", ErrForbiddenDimension, dim)
		}
	}
	return nil
}

func detectDivergence(aiScore float64, checks map[string]float64) bool {
	if len(checks) == 0 {
		return false
	}
	var sum float64
	for _, v := range checks {
		sum += v
	}
	avg := sum / float64(len(checks))
	return math.Abs(aiScore-avg) > divergenceThreshold
}

func checkActionOutcomes(observable ObservableContext) float64 {
	if len(observable.FollowUps) == 0 {
		return 0.5
	}
	var created int
	for _, f := range observable.FollowUps {
		if f.CreatedSomething {
			created++
		}
	}
	return math.Min(0.5+float64(created)*0.15, 1.0)
}

func checkCreationOutput(observable ObservableContext) float64 {
	if len(observable.PropagationEvents) == 0 {
		return 0.5
	}
	return math.Min(0.5+float64(len(observable.PropagationEvents))*0.1, 1.0)
}

func checkTrajectoryConsistency(observable ObservableContext) float64 {
	if observable.VectorConfidence < 0.1 {
		return 0.5
	}
	return 0.5 + observable.VectorDirection*observable.VectorConfidence*0.3
}
