package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "farmassist",
	Short: "Farm assistance backend: soil-moisture simulator, crop disease, dashboard and contact relay",
	Long: `farmassist serves the farm assistance pages over HTTP/JSON and gRPC.

Available subcommands:
  serve    - Run the HTTP gateway, the gRPC control service and the MQTT bridge
  simulate - Run the soil-moisture simulator headless and print or publish ticks
  ctl      - Drive a running server through gRPC`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (FARM_* env vars override it)")
	rootCmd.AddCommand(serveCmd, simulateCmd, ctlCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
