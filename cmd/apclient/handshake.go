package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nlkli/fyspoti/internal/apnet"
	"github.com/nlkli/fyspoti/internal/applog"
	"github.com/nlkli/fyspoti/internal/config"
	"github.com/nlkli/fyspoti/internal/handshake"
)

var handshakeTimeout time.Duration

func newHandshakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handshake",
		Short: "Resolve (or use --access-point), dial, and run the handshake",
		RunE:  runHandshake,
	}
	cmd.Flags().DurationVar(&handshakeTimeout, "timeout", 10*time.Second, "bound on dial + handshake")
	return cmd
}

func runHandshake(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := applog.New(cmd.ErrOrStderr(), cfg.LogLevel, "handshake")

	endpoint := cfg.AccessPoint
	if endpoint == "" {
		endpoint, err = resolveWithCache(cmd.Context(), cfg, applog.New(cmd.ErrOrStderr(), cfg.LogLevel, "resolver"))
		if err != nil {
			return fmt.Errorf("resolve: %w", err)
		}
	}

	deadline := time.Now().Add(handshakeTimeout)
	conn, err := apnet.DialTimeout(endpoint, handshakeTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set deadline on %s: %w", endpoint, err)
	}

	start := time.Now()
	result, err := handshake.Handshake(conn, handshake.Options{})
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("handshake failed")
		return err
	}
	log.Info().
		Str("endpoint", endpoint).
		Str("attempt_id", result.AttemptID.String()).
		Dur("elapsed", elapsed).
		Msg("handshake established")

	summary := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		Render(fmt.Sprintf(
			"access point   %s\nattempt id     %s\nhandshake time %s",
			endpoint,
			result.AttemptID,
			humanize.RelTime(start, time.Now(), "", ""),
		))
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return result.Conn.Close()
}
