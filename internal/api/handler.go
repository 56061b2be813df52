package api

import (
	"merchant-backoffice/internal/db"
	"merchant-backoffice/internal/dispatch"
	"merchant-backoffice/internal/hub"
	"merchant-backoffice/internal/logging"
	"merchant-backoffice/internal/sweep"
)

type Handler struct {
	db         *db.DB
	dispatcher *dispatch.Dispatcher
	sweeper    *sweep.Sweeper
	hub        *hub.Hub
	logger     *logging.Logger
}

func NewHandler(db *db.DB, dispatcher *dispatch.Dispatcher, sweeper *sweep.Sweeper, wsHub *hub.Hub, logger *logging.Logger) *Handler {
	return &Handler{
		db:         db,
		dispatcher: dispatcher,
		sweeper:    sweeper,
		hub:        wsHub,
		logger:     logger,
	}
}
