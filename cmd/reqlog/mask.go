package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newMaskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mask [file]",
		Short: "Mask a JSON document",
		Long:  "Reads a JSON document from the file or stdin and prints it with the configured fields masked.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if !json.Valid(data) {
				return fmt.Errorf("input is not valid JSON")
			}

			masked := a.client.Masker().Apply(json.RawMessage(data))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(masked)
		},
	}
}
