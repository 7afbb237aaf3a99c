package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/tolower/foundation/host"
	"github.com/ardanlabs/tolower/foundation/program"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	url       string
	local     bool
	seed      string
	programID string
	data      string
	dataHex   []byte
	signers   []string
	unsigned  []string
)

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Sign an instruction and invoke the program",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := buildInstruction(cmd)
		if err != nil {
			return err
		}

		if local {
			return invokeLocal(cmd.OutOrStdout(), inst)
		}

		return invokeRemote(cmd.OutOrStdout(), inst)
	},
}

func init() {
	rootCmd.AddCommand(invokeCmd)
	invokeCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the host.")
	invokeCmd.Flags().BoolVarP(&local, "local", "l", false, "Run the program in process instead of calling the host.")
	invokeCmd.Flags().StringVar(&seed, "seed", "tolower", "Seed the program id is derived from.")
	invokeCmd.Flags().StringVar(&programID, "program", "", "Base58 program id, overrides the seed.")
	invokeCmd.Flags().StringVarP(&data, "data", "d", "", "Instruction data as text.")
	invokeCmd.Flags().BytesHexVar(&dataHex, "data-hex", nil, "Instruction data as hex, overrides --data.")
	invokeCmd.Flags().StringSliceVarP(&signers, "signer", "s", nil, "Names of keys that sign the instruction.")
	invokeCmd.Flags().StringSliceVar(&unsigned, "unsigned", nil, "Account ids passed without a signature.")
}

// buildInstruction constructs the instruction from the flags and signs it
// with every signer key.
func buildInstruction(cmd *cobra.Command) (host.Instruction, error) {
	pid := program.NewProgramID(seed)
	if programID != "" {
		var err error
		if pid, err = program.ToProgramID(programID); err != nil {
			return host.Instruction{}, err
		}
	}

	input := []byte(data)
	if cmd.Flags().Changed("data-hex") {
		input = dataHex
	}

	keys := make([]*ecdsa.PrivateKey, len(signers))
	accounts := make([]program.AccountID, 0, len(signers)+len(unsigned))
	for i, name := range signers {
		privateKey, err := crypto.LoadECDSA(keyPath(name))
		if err != nil {
			return host.Instruction{}, fmt.Errorf("loading key %q: %w", name, err)
		}
		keys[i] = privateKey
		accounts = append(accounts, program.PublicKeyToAccountID(privateKey.PublicKey))
	}

	for _, a := range unsigned {
		account, err := program.ToAccountID(a)
		if err != nil {
			return host.Instruction{}, fmt.Errorf("account %q: %w", a, err)
		}
		accounts = append(accounts, account)
	}

	inst := host.NewInstruction(pid, input, accounts...)
	for _, privateKey := range keys {
		var err error
		if inst, err = host.SignAccount(inst, privateKey); err != nil {
			return host.Instruction{}, err
		}
	}

	return inst, nil
}

// invokeLocal runs the instruction against an in process host.
func invokeLocal(w io.Writer, inst host.Instruction) error {
	hst := host.New(host.Config{ProgramID: inst.ProgramID})

	rcpt := hst.Invoke(inst)
	for _, record := range rcpt.Logs {
		fmt.Fprintf(w, "Program log: %s\n", record)
	}

	return rcpt.Err
}

// invokeRemote submits the instruction to the host service.
func invokeRemote(w io.Writer, inst host.Instruction) error {
	body, err := json.Marshal(inst)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/program/invoke", url), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Logs  []string `json:"logs"`
		Code  string   `json:"code"`
		Error string   `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {

		// Routers and proxies answer failures with bodies that are not ours.
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("host responded %s", resp.Status)
		}
		return fmt.Errorf("decoding response: %w", err)
	}

	for _, record := range result.Logs {
		fmt.Fprintf(w, "Program log: %s\n", record)
	}

	if resp.StatusCode != http.StatusOK {
		switch {
		case result.Code != "":
			return fmt.Errorf("%s: %s", result.Code, result.Error)
		case result.Error != "":
			return errors.New(result.Error)
		default:
			return fmt.Errorf("host responded %s", resp.Status)
		}
	}

	return nil
}
