package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	fserrors "github.com/vango-dev/fsroute/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long:  `Print the description of an error code such as E104. Without a code, list all codes.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				listCodes(w)
				return nil
			}
			return explain(w, args[0])
		},
	}
}

func explain(w io.Writer, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	t, ok := fserrors.Lookup(code)
	if !ok {
		return fmt.Errorf("unknown error code %q; run `fsroute explain` for the list", code)
	}
	fmt.Fprintf(w, "%s (%s): %s\n", code, t.Category, t.Message)
	if t.Detail != "" {
		fmt.Fprintf(w, "\n  %s\n", t.Detail)
	}
	return nil
}

func listCodes(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, code := range fserrors.Codes() {
		t, _ := fserrors.Lookup(code)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", code, t.Category, t.Message)
	}
	tw.Flush()
}
