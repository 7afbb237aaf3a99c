// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/tolower/app/services/host/handlers/v1/programgrp"
	"github.com/ardanlabs/tolower/foundation/events"
	"github.com/ardanlabs/tolower/foundation/host"
	"github.com/ardanlabs/tolower/foundation/nameservice"
	"github.com/ardanlabs/tolower/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log  *zap.SugaredLogger
	Host *host.Host
	NS   *nameservice.NameService
	Evts *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	pgh := programgrp.Handlers{
		Log:  cfg.Log,
		Host: cfg.Host,
		NS:   cfg.NS,
		Evts: cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/program", pgh.Program)
	app.Handle(http.MethodPost, version, "/program/invoke", pgh.Invoke)
	app.Handle(http.MethodGet, version, "/events", pgh.Events)
}
