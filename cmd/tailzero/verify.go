package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/tailzero/internal/digest"
	"github.com/steveyegge/tailzero/internal/scanner"
	"github.com/steveyegge/tailzero/internal/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify CANDIDATE",
	Short: "Check whether a candidate's digest ends in N zeros",
	Long: `Hash a single candidate and report whether its hex digest ends with at
least N zeros. Useful for checking results printed by search or stored in
the results database.

Examples:
  tailzero verify 4163 -n 3
  tailzero verify 403 -n 2 --algorithm blake2b`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		zeroCount, _ := cmd.Flags().GetInt("number")
		algorithm := cfg.Search.Algorithm
		if cmd.Flags().Changed("algorithm") {
			algorithm, _ = cmd.Flags().GetString("algorithm")
		}

		ok, err := runVerify(os.Stdout, args[0], zeroCount, algorithm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			os.Exit(1)
		}
	},
}

func init() {
	verifyCmd.Flags().IntP("number", "n", 0, "Required number of trailing zeros")
	verifyCmd.Flags().String("algorithm", "", "Digest algorithm: sha256 or blake2b (default from config: sha256)")
	_ = verifyCmd.MarkFlagRequired("number")

	rootCmd.AddCommand(verifyCmd)
}

// runVerify prints the candidate's digest and whether it satisfies zeroCount
func runVerify(w io.Writer, arg string, zeroCount int, algorithm string) (bool, error) {
	candidate, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return false, fmt.Errorf("candidate must be an integer between 0 and 4294967295 (got %q)", arg)
	}
	if err := (types.SearchRequest{ZeroCount: zeroCount}).Validate(); err != nil {
		return false, err
	}
	h, err := digest.Lookup(algorithm)
	if err != nil {
		return false, err
	}

	// Hash the canonical decimal form so "007" verifies as 7
	m := types.Match{
		Candidate: uint32(candidate),
		Digest:    h.HexDigest(strconv.FormatUint(candidate, 10)),
	}

	fmt.Fprintln(w, m.String())

	zeros := scanner.TrailingZeros(m.Digest)
	ok := scanner.HasTrailingZeros(m.Digest, zeroCount)
	if ok {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(w, "%s %s digest ends with %d zeros (need %d)\n", green("✓"), h.Name(), zeros, zeroCount)
	} else {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(w, "%s %s digest ends with %d zeros (need %d)\n", red("✗"), h.Name(), zeros, zeroCount)
	}
	return ok, nil
}
