//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package debug provides a local HTTP harness for one agent node: run input
// rows through it and inspect the tools it resolves, without the engine.
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"trpc.group/trpc-go/trpc-flow-go/agent"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/provider"
	"trpc.group/trpc-go/trpc-flow-go/runner"
	"trpc.group/trpc-go/trpc-flow-go/tool"
	"trpc.group/trpc-go/trpc-flow-go/workflow"
)

// Server exposes HTTP endpoints for debugging one agent node against its
// configured graph.
type Server struct {
	agentNodeID string
	resolver    *provider.Resolver
	runner      *runner.Runner
	router      *mux.Router

	runnerOpts []runner.Option // Extra options applied when creating the runner.
}

// Option configures the Server instance.
type Option func(*Server)

// WithRunnerOptions appends additional runner.Option values applied when the
// server constructs its runner, e.g. runner.WithParallelism.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(s *Server) { s.runnerOpts = append(s.runnerOpts, opts...) }
}

// New creates the debug server for one agent and the resolver over its graph.
func New(a *agent.Agent, resolver *provider.Resolver, agentNodeID string, opts ...Option) *Server {
	s := &Server{
		agentNodeID: agentNodeID,
		resolver:    resolver,
		router:      mux.NewRouter(),
	}

	// Apply user-provided options.
	for _, opt := range opts {
		opt(s)
	}
	s.runner = runner.New(a, resolver, s.runnerOpts...)

	// Add CORS middleware for browser-based debug frontends.
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

// registerRoutes sets up the REST endpoints.
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/v1/invoke", s.handleInvoke).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/tools", s.handleListTools).Methods(http.MethodGet)

	// OPTIONS handler to allow CORS pre-flight.
	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	s.router.HandleFunc("/v1/invoke", preflight).Methods(http.MethodOptions)
}

// invokeRequest is the body of POST /v1/invoke: one JSON object per input row.
type invokeRequest struct {
	Rows []map[string]any `json:"rows"`
}

// toolInfo is one GET /v1/tools entry: the declaration plus its origin.
type toolInfo struct {
	*tool.Declaration
	Source tool.Source `json:"source"`
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleInvoke called: path=%s", r.URL.Path)

	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(req.Rows) == 0 {
		http.Error(w, "request has no input rows", http.StatusBadRequest)
		return
	}
	rows := make([]workflow.Item, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = workflow.Item{JSON: row}
	}

	out, err := s.runner.Run(r.Context(), s.agentNodeID, rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, out)
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleListTools called: path=%s", r.URL.Path)

	resolved, err := s.resolver.ResolveAll(r.Context(), s.agentNodeID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	collection := resolved.Collection(r.Context())
	infos := make([]toolInfo, 0, collection.Len())
	for _, decl := range collection.Declarations() {
		src, _ := collection.Source(decl.Name)
		infos = append(infos, toolInfo{Declaration: decl, Source: src})
	}
	s.writeJSON(w, infos)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
