package cli

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"weekboard/internal/web"

	"github.com/spf13/cobra"
)

const defaultWebAddr = "127.0.0.1:3336"

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the board as a local web UI",
		Long: strings.TrimSpace(`
Serve the board from a local HTTP server.

Pages are server-rendered HTML. Open pages update their lists over a
Datastar SSE stream after every change made through the UI.
`),
		Example: strings.TrimSpace(`
# Serve on the default address and open a browser
weekboard web

# Serve a specific store on another port
weekboard --dir ./board web --addr :8080 --open=false
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			listenAddr := strings.TrimSpace(addr)
			if !cmd.Flags().Changed("addr") && app.cfg != nil && strings.TrimSpace(app.cfg.WebAddr) != "" {
				listenAddr = strings.TrimSpace(app.cfg.WebAddr)
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:               listenAddr,
				Dir:                dir,
				MaxAttachmentBytes: app.maxAttachmentBytes(),
				Log:                app.logger(),
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"dir":       dir,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "weekboard web running at %s (dir=%s)\n", url, dir)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			return http.Serve(ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultWebAddr, "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the UI in your default browser")
	return cmd
}
