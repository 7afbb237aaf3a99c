package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/tolower/foundation/program"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new private key",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := keyPath(accountName)

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("key %q already exists", path)
		}

		if err := os.MkdirAll(accountPath, 0755); err != nil {
			return fmt.Errorf("creating key folder: %w", err)
		}

		privateKey, err := crypto.GenerateKey()
		if err != nil {
			return fmt.Errorf("generating key: %w", err)
		}

		if err := crypto.SaveECDSA(path, privateKey); err != nil {
			return fmt.Errorf("saving key: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), program.PublicKeyToAccountID(privateKey.PublicKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
