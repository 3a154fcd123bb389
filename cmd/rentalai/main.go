package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bibujohny/rentalAI/internal/config"
	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/lifecycle"
	"github.com/bibujohny/rentalAI/internal/utils"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "rentalai",
	Short: "Rental property, lodge and income management web app",
	Long: `rentalai runs the rental management web app and the commands used to
operate it: background start/stop, logs, database migrations and deploys.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rentalai %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, startCmd, stopCmd, statusCmd, logsCmd, migrateCmd, seedCmd, deployCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig initialises logging and reads the environment.
func loadConfig() (*config.Config, error) {
	utils.InitLogger(config.DefaultAppName)
	return config.LoadConfig()
}

func newManager(cfg *config.Config) *lifecycle.Manager {
	port, _ := strconv.Atoi(cfg.AppPort)
	return &lifecycle.Manager{
		PIDFile:     lifecycle.PIDFile{Path: cfg.PIDFile},
		LogFile:     cfg.LogFile,
		Port:        port,
		Finder:      lifecycle.LsofFinder{},
		StopTimeout: constants.ProcessStopTimeout,
	}
}
