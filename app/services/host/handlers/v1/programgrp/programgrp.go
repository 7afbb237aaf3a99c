// Package programgrp maintains the group of handlers for program execution.
package programgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/tolower/business/sys/validate"
	"github.com/ardanlabs/tolower/business/web/errs"
	"github.com/ardanlabs/tolower/foundation/events"
	"github.com/ardanlabs/tolower/foundation/host"
	"github.com/ardanlabs/tolower/foundation/nameservice"
	"github.com/ardanlabs/tolower/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of program endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Host *host.Host
	NS   *nameservice.NameService
	WS   websocket.Upgrader
	Evts *events.Events
}

// Program returns the id of the program the host executes.
func (h Handlers) Program(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	info := programInfo{
		ProgramID: h.Host.ProgramID(),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Invoke executes a signed instruction and returns the receipt.
func (h Handlers) Invoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var inst host.Instruction
	if err := web.Decode(r, &inst); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(inst); err != nil {
		return err
	}

	h.Log.Infow("invoke", "traceid", v.TraceID, "program", inst.ProgramID, "accounts", len(inst.Accounts), "data", len(inst.Data))

	rcpt := h.Host.Invoke(inst)
	if rcpt.Err != nil {
		status := http.StatusBadRequest
		if errors.Is(rcpt.Err, host.ErrUnknownProgram) {
			status = http.StatusNotFound
		}
		return errs.NewProgramFailure(rcpt.Err, status, rcpt.Code, rcpt.Logs)
	}

	accounts := make([]account, len(rcpt.Accounts))
	for i, ai := range rcpt.Accounts {
		accounts[i] = account{
			AccountID: ai.Key,
			Name:      h.NS.Lookup(ai.Key),
			IsSigner:  ai.IsSigner,
		}
	}

	resp := receipt{
		Receipt:  rcpt,
		Accounts: accounts,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to stream program records to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
