package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stockhand/internal/history"
	"stockhand/internal/session"
)

func chatCmd() *cobra.Command {
	var showDebug bool
	cmd := &cobra.Command{
		Use:          "chat",
		Short:        "Interactive inventory command session",
		Long:         "Read commands from stdin one line at a time. /undo reverts the last reversible command, /history prints the command log, /debug toggles interpretation details, /quit exits.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, closeFn, err := openDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			sess := d.newSession()
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Println("stockhand ready. Type an inventory command, or /quit to exit.")
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/debug":
					showDebug = !showDebug
					fmt.Printf("debug output %s\n", onOff(showDebug))
					continue
				case "/history":
					printHistory(sess.History())
					continue
				case "/undo":
					printTurn(sess.Undo(cmd.Context()), showDebug)
					continue
				}
				printTurn(sess.Submit(cmd.Context(), line), showDebug)
			}
		},
	}
	cmd.Flags().BoolVar(&showDebug, "show-debug", false, "print interpretation details for every turn")
	return cmd
}

func printTurn(result session.TurnResult, showDebug bool) {
	switch result.Type {
	case session.TurnExecuted:
		fmt.Println(result.Result.Message)
		if result.Result.Data != nil {
			out, err := json.MarshalIndent(result.Result.Data, "", "  ")
			if err == nil {
				fmt.Println(string(out))
			}
		}
	case session.TurnClarify:
		fmt.Println(result.Prompt)
	default:
		fmt.Printf("cannot do that: %s\n", result.Reason)
	}
	if showDebug && result.Debug != nil {
		out, err := json.MarshalIndent(result.Debug, "", "  ")
		if err == nil {
			fmt.Println(string(out))
		}
	}
}

func printHistory(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Println("no commands yet")
		return
	}
	for i, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		marker := " "
		if e.UndoOf != "" {
			marker = "~"
		}
		fmt.Printf("%3d %s [%s] %s: %s\n", i+1, marker, status, e.Action, e.ResultSummary)
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
