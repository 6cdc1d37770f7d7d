package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"fishcare_notifier/internal/domain/notification"
	"fishcare_notifier/internal/infra/config"
	"fishcare_notifier/internal/infra/logger"

	"github.com/spf13/cobra"
)

const (
	serverProbeTimeout = 2 * time.Second
	remoteCheckTimeout = 3 * time.Minute
)

// checkCmd prefers the running server so its tracker sees the scan. A local scan
// with a fresh tracker only happens when no server answers.
func checkCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one feeding schedule scan and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load application configuration: %w", err)
			}
			logger.Init(cfg)
			if server == "" {
				server = localURL(cfg.HTTPAddr)
			}

			result, handled, err := checkViaServer(cmd.Context(), http.DefaultClient, server)
			if handled {
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), result)
			}

			logger.WithComponent("check").WithField("server", server).Info("No running server, scanning locally")
			return withDeps(func(ctx context.Context, rt *deps) error {
				result, err := rt.reminderService(notification.NewTracker()).RunScanCycle(ctx)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Base URL of a running serve process (default derived from HTTP_ADDR)")
	return cmd
}

// checkViaServer runs the scan on the server at baseURL. handled is false when
// no server answers its health check.
func checkViaServer(ctx context.Context, client *http.Client, baseURL string) (*notification.ScanResult, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	baseURL = strings.TrimRight(baseURL, "/")

	probeCtx, cancel := context.WithTimeout(ctx, serverProbeTimeout)
	defer cancel()
	probe, err := http.NewRequestWithContext(probeCtx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return nil, false, nil
	}
	resp, err := client.Do(probe)
	if err != nil {
		return nil, false, nil
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, nil
	}

	runCtx, cancelRun := context.WithTimeout(ctx, remoteCheckTimeout)
	defer cancelRun()
	req, err := http.NewRequestWithContext(runCtx, http.MethodPost, baseURL+"/api/feeding/check-schedule", nil)
	if err != nil {
		return nil, true, err
	}
	resp, err = client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("run check on %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil || failure.Message == "" {
			return nil, true, fmt.Errorf("run check on %s: status %d", baseURL, resp.StatusCode)
		}
		return nil, true, errors.New(failure.Message)
	}

	var result notification.ScanResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, true, fmt.Errorf("decode check response: %w", err)
	}
	return &result, true, nil
}

// localURL turns a listen address such as ":8080" into a dialable base URL.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func printResult(w io.Writer, result *notification.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
