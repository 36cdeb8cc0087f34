// Package svc bundles the server's shared collaborators into a single
// context handed to every handler, avoiding an import cycle between
// internal/server and internal/handler/*.
package svc

import (
	"github.com/tycoonteritory/AutoCut/internal/config"
	"github.com/tycoonteritory/AutoCut/internal/db"
	"github.com/tycoonteritory/AutoCut/internal/orchestrator"
	"github.com/tycoonteritory/AutoCut/internal/realtime"
	"github.com/tycoonteritory/AutoCut/internal/upload"
)

// ServiceContext is the set of dependencies every HTTP handler needs.
type ServiceContext struct {
	Config       config.Config
	Store        *db.Store
	Orchestrator *orchestrator.Orchestrator
	Hubs         *realtime.Registry
	Admitter     *upload.Admitter
}

// New wires a ServiceContext from its component parts.
func New(cfg config.Config, store *db.Store, orch *orchestrator.Orchestrator, hubs *realtime.Registry, admitter *upload.Admitter) *ServiceContext {
	return &ServiceContext{
		Config:       cfg,
		Store:        store,
		Orchestrator: orch,
		Hubs:         hubs,
		Admitter:     admitter,
	}
}

// Close releases everything the ServiceContext owns.
func (s *ServiceContext) Close() error {
	return s.Store.Close()
}
