package config

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/chusla/improvement-axiom/internal/logging"
	"github.com/chusla/improvement-axiom/internal/webclient"
)

// NewWebClient builds the WebClient named by cfg.Kind. "none" (the default)
// returns webclient.NoopClient so every defence layer degrades gracefully
// without branching on "do we have a web client?".
func (c Config) NewWebClient() webclient.WebClient {
	switch c.Web.Kind {
	case "http":
		opts := []webclient.HTTPClientOption{}
		if c.Web.SearchEndpoint != "" {
			opts = append(opts, webclient.WithSearchEndpoint(c.Web.SearchEndpoint, c.Web.SearchAPIKey))
		}
		timeout := time.Duration(c.Web.TimeoutMs) * time.Millisecond
		return webclient.NewHTTPClient(timeout, opts...)
	case "mock":
		return webclient.NewMockClient()
	default:
		return webclient.NoopClient{}
	}
}

// NewLogger builds the zerolog.Logger named by cfg.Logging.
func (c Config) NewLogger() zerolog.Logger {
	return logging.New(c.Logging.Level, c.Logging.Format)
}
