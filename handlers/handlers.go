package handlers

import (
	"app/pipeline"
	"app/store"
)

// Handler bundles the collaborators the HTTP layer needs. Construction
// happens once at startup; the handler itself holds no per-request state.
type Handler struct {
	Store    store.TimeSeriesStore
	Pipeline *pipeline.Runner
}

// New builds the handler set.
func New(ts store.TimeSeriesStore, p *pipeline.Runner) *Handler {
	return &Handler{Store: ts, Pipeline: p}
}
