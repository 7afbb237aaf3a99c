package cmd

import (
	"fmt"

	"github.com/ardanlabs/tolower/foundation/program"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the account id of the private key",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := crypto.LoadECDSA(keyPath(accountName))
		if err != nil {
			return fmt.Errorf("loading key: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), program.PublicKeyToAccountID(privateKey.PublicKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
}
