// Package server implements the MCP server exposing the behavioral-
// trajectory inference engine.
//
// Available tools:
//   - process-experience: classify a newly reported experience
//   - process-follow-up: fold a delayed signal into an existing experience
//   - submit-artifact: verify evidence of creation against an experience
//   - get-due-questions: list scheduled reflection questions that are due
//   - predict-resonance: estimate resonance for a not-yet-lived candidate
package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chusla/improvement-axiom/internal/orchestrator"
	"github.com/chusla/improvement-axiom/internal/server/handlers"
)

// Server registers the engine's MCP tools against an *mcp.Server.
type Server struct {
	handlers *handlers.Handlers
}

// New returns a Server driving engine.
func New(engine *orchestrator.Orchestrator) *Server {
	return &Server{handlers: handlers.New(engine)}
}

// RegisterTools attaches every tool to mcpServer.
func (s *Server) RegisterTools(mcpServer *mcp.Server) {
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "process-experience",
		Description: "Classify a newly reported experience and return its quality, intention, and trajectory assessment",
	}, s.handlers.HandleProcessExperience)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "process-follow-up",
		Description: "Fold a delayed follow-up signal (e.g. did the user create something) into an existing experience",
	}, s.handlers.HandleProcessFollowUp)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "submit-artifact",
		Description: "Verify a user-presented URL as evidence of creation and, when it verifies, mark the experience propagated",
	}, s.handlers.HandleSubmitArtifact)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "get-due-questions",
		Description: "List pending reflection questions whose scheduled ask time has arrived",
	}, s.handlers.HandleGetDueQuestions)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "predict-resonance",
		Description: "Estimate how strongly a not-yet-lived candidate experience would resonate for a user",
	}, s.handlers.HandlePredictResonance)
}
