// Package main provides the entry point for the improvement-axiom MCP
// server.
//
// This server is designed to be spawned as a child process by an MCP
// client and communicates via stdio using the Model Context Protocol. It
// exposes five tools over a behavioral-trajectory inference engine:
// process-experience, process-follow-up, submit-artifact,
// get-due-questions, and predict-resonance.
//
// Configuration is read from the environment (see internal/config); an
// optional .env file is loaded first.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chusla/improvement-axiom/internal/config"
	"github.com/chusla/improvement-axiom/internal/orchestrator"
	"github.com/chusla/improvement-axiom/internal/propagation"
	"github.com/chusla/improvement-axiom/internal/semantic"
	"github.com/chusla/improvement-axiom/internal/server"
	"github.com/chusla/improvement-axiom/internal/storage"
	"github.com/chusla/improvement-axiom/internal/storage/neo4jstore"
)

func main() {
	cfg := config.Load()
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer func() {
		if err := storage.CloseStorage(store); err != nil {
			log.Warn().Err(err).Msg("failed to close storage")
		}
	}()
	log.Info().Str("type", string(cfg.Storage.Type)).Msg("storage initialized")

	webClient := cfg.NewWebClient()
	log.Info().Str("kind", cfg.Web.Kind).Msg("web client initialized")

	semanticIndex, err := semantic.NewIndex("", semantic.EmbedderFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize semantic index")
	}
	log.Info().Msg("semantic index initialized")

	var lineageReplica propagation.Replica
	if cfg.Neo4j.Enabled {
		client, err := neo4jstore.NewClient(ctx, cfg.Neo4j.AsClientConfig())
		if err != nil {
			log.Warn().Err(err).Msg("neo4j lineage replica unavailable, continuing without it")
		} else {
			defer client.Close(ctx)
			lineageReplica = client
			log.Info().Str("uri", cfg.Neo4j.URI).Msg("neo4j lineage replica connected")
		}
	}

	engine := orchestrator.New(store, webClient, semanticIndex, lineageReplica, log)
	log.Info().Msg("orchestrator initialized")

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "improvement-axiom",
		Version: "0.1.0",
	}, nil)

	srv := server.New(engine)
	srv.RegisterTools(mcpServer)
	log.Info().Msg("registered tools: process-experience, process-follow-up, submit-artifact, get-due-questions, predict-resonance")

	transport := &mcp.StdioTransport{}
	log.Info().Msg("starting MCP server on stdio")
	if err := mcpServer.Run(ctx, transport); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
