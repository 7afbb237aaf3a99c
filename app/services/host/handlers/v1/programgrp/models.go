package programgrp

import (
	"github.com/ardanlabs/tolower/foundation/host"
	"github.com/ardanlabs/tolower/foundation/program"
)

type programInfo struct {
	ProgramID program.ProgramID `json:"program_id"`
}

type account struct {
	AccountID program.AccountID `json:"account"`
	Name      string            `json:"name"`
	IsSigner  bool              `json:"is_signer"`
}

type receipt struct {
	host.Receipt
	Accounts []account `json:"accounts"`
}
