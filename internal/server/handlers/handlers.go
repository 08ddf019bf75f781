// Package handlers implements the MCP tool handlers exposing the
// behavioral-trajectory engine: process-experience, process-follow-up,
// submit-artifact, get-due-questions, and predict-resonance.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/orchestrator"
	"github.com/chusla/improvement-axiom/internal/streaming"
)

// Handlers wraps the orchestrator and exposes one method per MCP tool.
type Handlers struct {
	engine *orchestrator.Orchestrator
}

// New returns Handlers bound to engine.
func New(engine *orchestrator.Orchestrator) *Handlers {
	return &Handlers{engine: engine}
}

func toJSONContent(data interface{}) []mcp.Content {
	jsonData, err := json.Marshal(data)
	if err != nil {
		errData := map[string]string{"error": err.Error()}
		jsonData, _ = json.Marshal(errData)
	}
	return []mcp.Content{&mcp.TextContent{Text: string(jsonData)}}
}

// ProcessExperienceRequest is the input for process-experience.
type ProcessExperienceRequest struct {
	UserID      string  `json:"user_id"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	Context     string  `json:"context,omitempty"`
}

// ProcessExperienceResponse is the output of process-experience.
type ProcessExperienceResponse struct {
	Assessment *core.Assessment `json:"assessment"`
}

// HandleProcessExperience classifies a newly reported experience and
// returns its full assessment.
func (h *Handlers) HandleProcessExperience(ctx context.Context, req *mcp.CallToolRequest, request ProcessExperienceRequest) (*mcp.CallToolResult, *ProcessExperienceResponse, error) {
	ctx, reporter := streaming.InjectReporter(ctx, req, "process-experience")
	reporter.ReportStep(1, 4, "quality", "assessing experience quality")

	assessment, err := h.engine.ProcessExperience(ctx, request.UserID, request.Description, request.Rating, request.Context)
	if err != nil {
		return nil, nil, fmt.Errorf("process-experience: %w", err)
	}

	reporter.ReportStep(4, 4, "complete", "assessment ready")

	response := &ProcessExperienceResponse{Assessment: assessment}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

// ProcessFollowUpRequest is the input for process-follow-up.
type ProcessFollowUpRequest struct {
	UserID       string        `json:"user_id"`
	ExperienceID string        `json:"experience_id"`
	FollowUp     core.FollowUp `json:"follow_up"`
}

// ProcessFollowUpResponse is the output of process-follow-up.
type ProcessFollowUpResponse struct {
	Assessment *core.Assessment `json:"assessment,omitempty"`
	Found      bool             `json:"found"`
}

// HandleProcessFollowUp folds a delayed follow-up signal into an existing
// experience and returns its refreshed assessment.
func (h *Handlers) HandleProcessFollowUp(ctx context.Context, req *mcp.CallToolRequest, request ProcessFollowUpRequest) (*mcp.CallToolResult, *ProcessFollowUpResponse, error) {
	ctx, reporter := streaming.InjectReporter(ctx, req, "process-follow-up")
	reporter.ReportStep(1, 2, "fold-in", "folding follow-up into trajectory")

	assessment, err := h.engine.ProcessFollowUp(ctx, request.UserID, request.ExperienceID, request.FollowUp)
	if err != nil {
		return nil, nil, fmt.Errorf("process-follow-up: %w", err)
	}

	reporter.ReportStep(2, 2, "complete", "assessment ready")

	response := &ProcessFollowUpResponse{Assessment: assessment, Found: assessment != nil}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

// SubmitArtifactRequest is the input for submit-artifact.
type SubmitArtifactRequest struct {
	UserID       string `json:"user_id"`
	ExperienceID string `json:"experience_id"`
	URL          string `json:"url"`
	Claim        string `json:"claim,omitempty"`
	Platform     string `json:"platform,omitempty"`
}

// SubmitArtifactResponse is the output of submit-artifact.
type SubmitArtifactResponse struct {
	Verification core.ArtifactVerification `json:"verification"`
}

// HandleSubmitArtifact verifies a user-presented URL as evidence of
// creation and, when it verifies, marks the named experience propagated.
func (h *Handlers) HandleSubmitArtifact(ctx context.Context, req *mcp.CallToolRequest, request SubmitArtifactRequest) (*mcp.CallToolResult, *SubmitArtifactResponse, error) {
	ctx, reporter := streaming.InjectReporter(ctx, req, "submit-artifact")
	reporter.ReportStep(1, 2, "fetch", "fetching and scoring artifact")

	verification, err := h.engine.SubmitArtifact(ctx, request.UserID, request.ExperienceID, request.URL, request.Claim, request.Platform)
	if err != nil {
		return nil, nil, fmt.Errorf("submit-artifact: %w", err)
	}

	reporter.ReportStep(2, 2, "complete", "verification ready")

	response := &SubmitArtifactResponse{Verification: verification}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

// GetDueQuestionsRequest is the input for get-due-questions.
type GetDueQuestionsRequest struct {
	UserID string `json:"user_id,omitempty"`
	AsOf   string `json:"as_of,omitempty"`
}

// GetDueQuestionsResponse is the output of get-due-questions.
type GetDueQuestionsResponse struct {
	Questions []core.PendingQuestion `json:"questions"`
}

// HandleGetDueQuestions returns pending reflection questions whose
// scheduled ask time has arrived, optionally filtered to one user.
func (h *Handlers) HandleGetDueQuestions(ctx context.Context, req *mcp.CallToolRequest, request GetDueQuestionsRequest) (*mcp.CallToolResult, *GetDueQuestionsResponse, error) {
	_, reporter := streaming.InjectReporter(ctx, req, "get-due-questions")
	reporter.ReportStep(1, 1, "scan", "scanning pending questions")

	asOf := time.Now().UTC()
	if request.AsOf != "" {
		parsed, err := core.ParseFlexibleTimestamp(request.AsOf)
		if err != nil {
			return nil, nil, fmt.Errorf("get-due-questions: invalid as_of: %w", err)
		}
		asOf = parsed
	}

	due := h.engine.GetDueQuestions(ctx, asOf)
	if request.UserID != "" {
		filtered := make([]core.PendingQuestion, 0, len(due))
		for _, q := range due {
			if q.UserID == request.UserID {
				filtered = append(filtered, q)
			}
		}
		due = filtered
	}

	response := &GetDueQuestionsResponse{Questions: due}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

// PredictResonanceRequest is the input for predict-resonance.
type PredictResonanceRequest struct {
	UserID               string `json:"user_id"`
	CandidateDescription string `json:"candidate_description"`
}

// PredictResonanceResponse is the output of predict-resonance.
type PredictResonanceResponse struct {
	Score float64  `json:"score"`
	Basis []string `json:"basis,omitempty"`
}

// HandlePredictResonance estimates how strongly a not-yet-lived candidate
// experience would resonate, based on the user's past experiences.
func (h *Handlers) HandlePredictResonance(ctx context.Context, req *mcp.CallToolRequest, request PredictResonanceRequest) (*mcp.CallToolResult, *PredictResonanceResponse, error) {
	_, reporter := streaming.InjectReporter(ctx, req, "predict-resonance")
	reporter.ReportStep(1, 1, "search", "searching semantic neighbors")

	score, basis, err := h.engine.PredictResonance(ctx, request.UserID, request.CandidateDescription)
	if err != nil {
		return nil, nil, fmt.Errorf("predict-resonance: %w", err)
	}

	response := &PredictResonanceResponse{Score: score, Basis: basis}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}
