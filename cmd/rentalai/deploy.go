package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibujohny/rentalAI/internal/deploy"
	"github.com/bibujohny/rentalAI/internal/utils"
)

var deployFile string

var deployCmd = &cobra.Command{
	Use:   "deploy <target>",
	Short: "Update, rebuild and restart the app on a deploy target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		utils.InitLogger("rentalai-deploy")
		targets, err := deploy.LoadTargets(deployFile)
		if err != nil {
			return err
		}
		target, err := targets.Get(args[0])
		if err != nil {
			return err
		}
		if err := deploy.NewDeployer().Deploy(cmd.Context(), target); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deployed %s\n", target.Name)
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployFile, "file", "deploy.yaml", "deploy targets file")
}
