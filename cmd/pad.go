package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lepko/lepko/internal/application/config"
	"github.com/lepko/lepko/internal/application/constant"
	"github.com/lepko/lepko/internal/client"
)

var (
	padServer     string
	padRoom       string
	padPassphrase string
	padTTL        int
)

// padCmd is a terminal participant: the reference implementation of the
// client-side contracts (encryption, self-destruct view, call roles).
var padCmd = &cobra.Command{
	Use:   "pad",
	Short: "Join a pad room from the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		runPad()
	},
}

func init() {
	padCmd.Flags().StringVar(&padServer, "server", "http://localhost:8080", "relay base URL")
	padCmd.Flags().StringVar(&padRoom, "room", "", "room identifier (required)")
	padCmd.Flags().StringVar(&padPassphrase, "passphrase", "", "shared passphrase for end-to-end encryption")
	padCmd.Flags().IntVar(&padTTL, "ttl", 0, "self-destruct seconds per message, 0 keeps messages forever")
	padCmd.MarkFlagRequired("room")

	rootCmd.AddCommand(padCmd)
}

func runPad() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	c, err := client.Dial(ctx, padServer, padRoom, padPassphrase, cfg.ICEServers)
	if err != nil {
		slog.Error("join pad", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer c.Close()

	c.OnMessage = func(msg client.DisplayedMessage) {
		fmt.Printf("<< %s\n", msg.Text)
	}

	fmt.Printf("joined pad %q. type to chat, /call to start a call, /hangup, /quit\n", padRoom)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.Done():
			fmt.Println("connection lost")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}

			switch strings.TrimSpace(line) {
			case "":
			case "/quit":
				return
			case "/call":
				if err := c.StartCall(); err != nil {
					fmt.Printf("call failed: %v\n", err)
				}
			case "/hangup":
				if err := c.Hangup(); err != nil && !errors.Is(err, client.ErrNoCall) {
					fmt.Printf("hangup failed: %v\n", err)
				}
			default:
				if err := c.SendText(line, padTTL); err != nil {
					fmt.Printf("send failed: %v\n", err)
				}
			}
		}
	}
}
