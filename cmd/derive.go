package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/normcast-labs/normcast/internal"
	"github.com/normcast-labs/normcast/norm"
)

var (
	showProof   bool
	verifyProof bool
)

var deriveCmd = &cobra.Command{
	Use:   "derive [expression]",
	Short: "Normalize an expression against the loaded rule set",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("error: Please provide exactly one expression")
			os.Exit(1)
		}

		n, err := norm.New(rulesFile, logger)
		if err != nil {
			logger.Fatal("Failed to load rule file", zap.Error(err))
		}

		in, err := n.ParseExpr(args[0])
		if err != nil {
			logger.Fatal("Failed to parse expression", zap.Error(err))
		}

		out, cert, err := n.Derive(in)
		if errors.Is(err, internal.ErrNoProgress) {
			fmt.Println("nothing to simplify")
			return
		}
		if err != nil {
			logger.Fatal("Derivation failed", zap.Error(err))
		}

		fmt.Println(out)
		if showProof {
			fmt.Println(cert)
		}
		if verifyProof {
			if err := n.Verify(cert, in, out); err != nil {
				logger.Fatal("Certificate failed to replay", zap.Error(err))
			}
			fmt.Println("certificate ok")
		}
	},
}

func init() {
	deriveCmd.Flags().BoolVar(&showProof, "show-proof", false, "Print the certificate")
	deriveCmd.Flags().BoolVar(&verifyProof, "verify", false, "Replay the certificate before printing")
}
