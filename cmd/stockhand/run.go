package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stockhand/internal/session"
)

func runCmd() *cobra.Command {
	var showDebug bool
	cmd := &cobra.Command{
		Use:          "run <command text>",
		Short:        "Process a single inventory command and exit",
		Long:         "Process one natural-language command. Exits non-zero when the command is rejected or needs clarification, so scripts can tell the difference.",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, closeFn, err := openDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			result := d.newSession().Submit(cmd.Context(), strings.Join(args, " "))
			printTurn(result, showDebug)
			if result.Type != session.TurnExecuted {
				return fmt.Errorf("command not executed: %s", string(result.Type))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDebug, "show-debug", false, "print interpretation details")
	return cmd
}
