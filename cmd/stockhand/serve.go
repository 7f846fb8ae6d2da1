package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"stockhand/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Start the JSON command API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, closeFn, err := openDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if addr == "" {
				addr = d.cfg.Serve.Addr
			}
			server := web.NewServer(d.newSession)
			fmt.Printf("Listening on %s\n", addr)
			return http.ListenAndServe(addr, server.Routes())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
