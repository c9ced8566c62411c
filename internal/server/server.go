package server

import (
	"context"
	"net/http"

	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"
	"github.com/panjf2000/ants/v2"
)

// authHeaders are the token headers the supported providers send
var authHeaders = []string{
	"X-Gitlab-Token",
	"X-Hub-Signature-256",
}

// EventHandler processes an accepted merge request event
type EventHandler func(ctx context.Context, event *model.CodeEvent) error

// Server handles webhook requests from VCS providers. Accepted events are
// handed to a bounded worker pool so slow model calls don't stall the
// webhook endpoint.
type Server struct {
	provider model.CodeProvider
	handler  EventHandler
	config   Config
	log      logze.Logger
	server   *servex.Server
	pool     *ants.Pool
}

// New creates a new webhook server
func New(cfg Config, provider model.CodeProvider, handler EventHandler) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	log := logze.With("module", "server")

	srv, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
		servex.WithCertificate(cfg.Certificate),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create worker pool")
	}

	h := &Server{
		provider: provider,
		handler:  handler,
		config:   cfg,
		log:      log,
		server:   srv,
		pool:     pool,
	}

	srv.HandleFunc(cfg.Endpoint, h.handleWebhook)

	return h, nil
}

// Start starts the webhook server
func (h *Server) Start(ctx context.Context) error {
	if h.config.EnableHTTPS {
		return h.server.StartHTTPS(h.config.Address)
	}
	return h.server.StartHTTP(h.config.Address)
}

// Stop stops the webhook server and the worker pool
func (h *Server) Stop(ctx context.Context) error {
	h.pool.Release()
	return h.server.Shutdown(ctx)
}

// handleWebhook handles incoming webhook requests
func (h *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	body, err := ctx.Read()
	if err != nil {
		ctx.BadRequest(err, "failed to read webhook body")
		return
	}

	// Token location is provider-specific
	token := h.getAuthFromHeaders(r)

	if err := h.provider.ValidateWebhook(body, token); err != nil {
		ctx.Unauthorized(err, "webhook validation failed")
		return
	}

	event, err := h.provider.ParseWebhookEvent(body)
	if err != nil {
		ctx.BadRequest(err, "failed to parse webhook event")
		return
	}

	if !h.provider.IsMergeRequestEvent(event) {
		h.log.Debug("ignoring non-merge request event")
		ctx.Response(http.StatusOK)
		return
	}

	h.log.Info("received merge request event", "mr_title", event.MergeRequest.Title, "action", event.Action)

	// Ack the webhook right away, the review runs in the pool with a
	// detached context so the provider doesn't retry on slow models
	err = h.pool.Submit(func() {
		if err := h.handler(context.Background(), event); err != nil {
			h.log.Error("failed to handle event", "error", err, "mr_iid", event.MergeRequest.IID)
		}
	})
	if err != nil {
		ctx.InternalServerError(err, "worker pool is full")
		return
	}

	ctx.Response(http.StatusAccepted)
}

// getAuthFromHeaders extracts auth token from request headers
func (h *Server) getAuthFromHeaders(r *http.Request) string {
	for _, header := range authHeaders {
		if value := r.Header.Get(header); value != "" {
			return value
		}
	}
	return ""
}
