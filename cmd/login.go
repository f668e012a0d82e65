package cmd

import (
	"github.com/spf13/cobra"

	"osrc/internal/auth"
	"osrc/internal/prompt"
	"osrc/internal/scope"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to osrc and choose the deploy scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession()
		if err != nil {
			return err
		}
		client := newClient(sess)
		p := prompt.NewCLIPrompter()
		authenticator := auth.New(client, store, p, scope.New(client, store, p))
		return authenticator.Login(cmd.Context(), sess)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
