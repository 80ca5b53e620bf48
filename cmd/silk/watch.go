package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/vango-dev/silk/pkg/protocol"
	"github.com/vango-dev/silk/pkg/tree/remote"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	var (
		frames      int
		resume      string
		clearScreen bool
	)

	cmd := &cobra.Command{
		Use:   "watch [url]",
		Short: "Mirror a served tree in the terminal",
		Long: `Connect to a silk session, apply every patch frame to a local
mirror and print the mirrored tree after each one.

Examples:
  silk watch
  silk watch ws://localhost:8080/ws --frames=10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			url := "ws://" + cfg.Addr() + "/ws"
			if len(args) == 1 {
				url = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			if err != nil {
				return fmt.Errorf("connect %s: %w", url, err)
			}
			client, err := remote.Dial(conn, resume)
			if err != nil {
				conn.Close()
				return err
			}
			logger.Info("watching", "url", url, "session", client.SessionID())

			return runWatch(ctx, client, conn, os.Stdout, frames, clearScreen)
		},
	}

	cmd.Flags().IntVarP(&frames, "frames", "n", 0, "Stop after this many patch frames (0: until interrupted)")
	cmd.Flags().StringVar(&resume, "resume", "", "Session id to resume")
	cmd.Flags().BoolVar(&clearScreen, "clear", true, "Clear the terminal before each print")

	return cmd
}

// runWatch prints the mirror of client after every patch frame. It stops
// after frames patch frames when frames > 0, or when ctx is done; conn is
// closed on cancellation to unblock the pending read.
func runWatch(ctx context.Context, client *remote.Client, conn io.Closer, w io.Writer, frames int, clearScreen bool) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	seen := 0
	for {
		f, err := client.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if f.Type != protocol.FramePatches {
			continue
		}

		if clearScreen {
			fmt.Fprint(w, "\033[H\033[2J")
		}
		fmt.Fprintf(w, "session %s  seq %d  resyncs %d  %s\n",
			client.SessionID(), client.Mirror().LastSeq(), client.Resyncs(), time.Now().Format(time.TimeOnly))
		for _, root := range client.Mirror().Roots() {
			fmt.Fprintln(w, root.String())
		}

		seen++
		if frames > 0 && seen >= frames {
			return client.Close()
		}
	}
}
