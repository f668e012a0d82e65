package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"osrc/internal/deploy"
	"osrc/internal/prompt"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Pack the build directory and deploy it",
	Long: `Deploy reads package.json in the current directory, links the bundle to a
remote project and uploads the build directory (dist unless -d is given).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession()
		if err != nil {
			return err
		}
		root, err := os.Getwd()
		if err != nil {
			return err
		}
		deployer := deploy.New(sess, newClient(sess), prompt.NewCLIPrompter(),
			deploy.WithPagesHost(settings.PagesHost),
			deploy.WithOutput(cmd.OutOrStdout()),
		)
		_, err = deployer.Run(cmd.Context(), deploy.Options{Root: root, Dirname: settings.Dirname})
		return err
	},
}

func init() {
	deployCmd.Flags().StringP("dirname", "d", "", "build directory to deploy (default dist)")
	v.BindPFlag("dirname", deployCmd.Flags().Lookup("dirname"))
	rootCmd.AddCommand(deployCmd)
}
