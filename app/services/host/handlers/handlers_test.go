package handlers_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/tolower/app/services/host/handlers"
	"github.com/ardanlabs/tolower/business/web/errs"
	"github.com/ardanlabs/tolower/foundation/events"
	"github.com/ardanlabs/tolower/foundation/host"
	"github.com/ardanlabs/tolower/foundation/nameservice"
	"github.com/ardanlabs/tolower/foundation/program"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var pid = program.NewProgramID("tolower")

type harness struct {
	mux  http.Handler
	evts *events.Events
	pk   *ecdsa.PrivateKey
	acct program.AccountID
}

func newHarness(t *testing.T) harness {
	pk, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	ns, err := nameservice.New(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	evts := events.New()
	h := host.New(host.Config{
		ProgramID: pid,
		EvHandler: func(v string, args ...any) {
			evts.Send(fmt.Sprintf(v, args...))
		},
	})

	mux := handlers.APIMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		Host:     h,
		NS:       ns,
		Evts:     evts,
	})

	return harness{
		mux:  mux,
		evts: evts,
		pk:   pk,
		acct: program.PublicKeyToAccountID(pk.PublicKey),
	}
}

func (hn harness) invoke(t *testing.T, inst host.Instruction) *httptest.ResponseRecorder {
	data, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("Should be able to marshal the instruction: %s", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/v1/program/invoke", bytes.NewReader(data))
	w := httptest.NewRecorder()
	hn.mux.ServeHTTP(w, r)

	return w
}

// =============================================================================

func Test_InvokeSigned(t *testing.T) {
	hn := newHarness(t)

	inst, err := host.SignAccount(host.NewInstruction(pid, []byte("AbaCAba"), hn.acct), hn.pk)
	if err != nil {
		t.Fatalf("Should be able to sign the instruction: %s", err)
	}

	w := hn.invoke(t, inst)
	if w.Code != http.StatusOK {
		t.Fatalf("Should receive a status code of 200 for the response : %d : %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID       string   `json:"id"`
		Logs     []string `json:"logs"`
		Accounts []struct {
			AccountID string `json:"account"`
			IsSigner  bool   `json:"is_signer"`
		} `json:"accounts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Should be able to unmarshal the response : %s", err)
	}

	if exp := "Lowercase input data: abacaba"; resp.Logs[len(resp.Logs)-1] != exp {
		t.Logf("got: %q", resp.Logs[len(resp.Logs)-1])
		t.Logf("exp: %q", exp)
		t.Fatalf("Should get back the lowercase record.")
	}

	if len(resp.Accounts) != 1 || !resp.Accounts[0].IsSigner {
		t.Fatalf("Should report the account as a signer: %+v", resp.Accounts)
	}
}

func Test_InvokeFailures(t *testing.T) {
	hn := newHarness(t)

	signedBad, err := host.SignAccount(host.NewInstruction(pid, []byte{0xFF, 0xFE}, hn.acct), hn.pk)
	if err != nil {
		t.Fatalf("Should be able to sign the instruction: %s", err)
	}

	type table struct {
		name   string
		inst   host.Instruction
		status int
		code   string
	}

	tt := []table{
		{
			name:   "unsigned",
			inst:   host.NewInstruction(pid, []byte("AbaCAba"), hn.acct),
			status: http.StatusBadRequest,
			code:   program.CodeMissingRequiredSignature,
		},
		{
			name:   "without-signers",
			inst:   host.NewInstruction(pid, []byte("AbaCAba")),
			status: http.StatusBadRequest,
			code:   program.CodeMissingRequiredSignature,
		},
		{
			name:   "invalid-utf8",
			inst:   signedBad,
			status: http.StatusBadRequest,
			code:   program.CodeInvalidInstructionData,
		},
		{
			name:   "unknown-program",
			inst:   host.NewInstruction(program.NewProgramID("other"), []byte("AbaCAba"), hn.acct),
			status: http.StatusNotFound,
			code:   "UnknownProgram",
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			w := hn.invoke(t, tst.inst)
			if w.Code != tst.status {
				t.Fatalf("Should receive a status code of %d for the response : %d", tst.status, w.Code)
			}

			var resp errs.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Should be able to unmarshal the response : %s", err)
			}

			if resp.Code != tst.code {
				t.Logf("got: %s", resp.Code)
				t.Logf("exp: %s", tst.code)
				t.Fatalf("Should get back the right error code.")
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_InvokeValidation(t *testing.T) {
	hn := newHarness(t)

	body := `{"program_id":"` + pid.String() + `","accounts":[{"account":""}],"data":"0x41"}`

	r := httptest.NewRequest(http.MethodPost, "/v1/program/invoke", strings.NewReader(body))
	w := httptest.NewRecorder()
	hn.mux.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Should receive a status code of 400 for the response : %d", w.Code)
	}

	var resp errs.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Should be able to unmarshal the response : %s", err)
	}

	if _, exists := resp.Fields["account"]; !exists {
		t.Fatalf("Should get back a field error for the account: %+v", resp)
	}
}

func Test_Program(t *testing.T) {
	hn := newHarness(t)

	w := httptest.NewRecorder()
	hn.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/program", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Should receive a status code of 200 for the response : %d", w.Code)
	}

	var resp struct {
		ProgramID program.ProgramID `json:"program_id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Should be able to unmarshal the response : %s", err)
	}

	if resp.ProgramID != pid {
		t.Fatalf("Should get back the host program id: %s", resp.ProgramID)
	}
}

func Test_Events(t *testing.T) {
	hn := newHarness(t)

	srv := httptest.NewServer(hn.mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Should be able to dial the events socket: %s", err)
	}
	defer c.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hn.evts.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Should register the socket as a subscriber.")
		}
		time.Sleep(10 * time.Millisecond)
	}

	inst, err := host.SignAccount(host.NewInstruction(pid, []byte("MiXeD"), hn.acct), hn.pk)
	if err != nil {
		t.Fatalf("Should be able to sign the instruction: %s", err)
	}
	hn.invoke(t, inst)

	c.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("Should be able to read the lowercase record: %s", err)
		}

		if strings.HasSuffix(string(msg), "Lowercase input data: mixed") {
			return
		}
	}
}
