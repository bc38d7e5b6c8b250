package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	grpcapi "github.com/LeonardoBeccarini/farmassist/internal/services/gateway/grpc"
)

var (
	ctlAddr    string
	ctlTimeout time.Duration
)

var ctlCmd = &cobra.Command{
	Use:   "ctl",
	Short: "Drive a running server through the gRPC control service",
	Long: `Send soil-moisture commands to a running "farmassist serve".

Available subcommands:
  state     - Print the current moisture snapshot
  pump      - Toggle the pump (manual mode only)
  auto      - Toggle automatic mode
  threshold - Set the auto-mode threshold (20..60)`,
}

var ctlStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the current moisture snapshot",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *grpcapi.Client, _ []string) (model.MoistureSnapshot, error) {
		return c.GetState(ctx)
	}),
}

var ctlPumpCmd = &cobra.Command{
	Use:   "pump",
	Short: "Toggle the pump",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *grpcapi.Client, _ []string) (model.MoistureSnapshot, error) {
		return c.TogglePump(ctx)
	}),
}

var ctlAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Toggle automatic mode",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *grpcapi.Client, _ []string) (model.MoistureSnapshot, error) {
		return c.ToggleAutoMode(ctx)
	}),
}

var ctlThresholdCmd = &cobra.Command{
	Use:   "threshold <value>",
	Short: "Set the auto-mode threshold",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *grpcapi.Client, args []string) (model.MoistureSnapshot, error) {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return model.MoistureSnapshot{}, fmt.Errorf("invalid threshold %q: %w", args[0], err)
		}
		return c.SetThreshold(ctx, v)
	}),
}

func init() {
	ctlCmd.PersistentFlags().StringVar(&ctlAddr, "addr", "localhost:50051", "gRPC address of the server")
	ctlCmd.PersistentFlags().DurationVar(&ctlTimeout, "timeout", 5*time.Second, "per-call timeout")
	ctlCmd.AddCommand(ctlStateCmd, ctlPumpCmd, ctlAutoCmd, ctlThresholdCmd)
}

type ctlCall func(ctx context.Context, c *grpcapi.Client, args []string) (model.MoistureSnapshot, error)

func withClient(call ctlCall) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		conn, err := grpc.NewClient(ctlAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("dial %s: %w", ctlAddr, err)
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), ctlTimeout)
		defer cancel()

		snap, err := call(ctx, grpcapi.NewClient(conn), args)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
}
