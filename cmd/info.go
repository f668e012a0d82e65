package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the current remote and login",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "remote:   %s\n", color.GreenString(sess.Remote))
		username := sess.Username
		if username == "" {
			username = color.YellowString("(not logged in)")
		}
		fmt.Fprintf(out, "username: %s\n", username)
		if sess.HasScope() {
			fmt.Fprintf(out, "scope:    %s %s\n", sess.Scope.Type, sess.Scope.ID)
		}
		if sess.TokenFromEnv() {
			fmt.Fprintf(out, "token:    from $%s\n", settings.TokenEnv)
		}
		fmt.Fprintf(out, "session:  %s\n", store.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
