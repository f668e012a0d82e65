package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"osrc/internal/api"
	"osrc/internal/config"
	"osrc/internal/failfast"
	"osrc/internal/logger"
	"osrc/internal/session"
)

const Version = "v1.0.0"

var (
	cmdLog = logger.PackageLogger("cmd", "🧭 OSRC")

	v        = viper.New()
	settings *config.Settings
	store    *session.Store
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "osrc",
	Short:   "Publish static page bundles to osrc",
	Version: Version,
	Long: `osrc packs a project's build output and deploys it to an osrc site.

Run "osrc login" once, then "osrc deploy" from the project root.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetString("remote")
		if remote == "" {
			return cmd.Help()
		}
		sess, err := loadSession()
		if err != nil {
			return err
		}
		sess.SetRemote(remote)
		if err := store.Save(sess); err != nil {
			return err
		}
		cmdLog.Success("Remote set to %s", color.GreenString(sess.Remote))
		return nil
	},
}

// Execute runs the root command. Any error ends the process with
// failfast.ExitCode.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			cmdLog.Warn("Interrupted")
		}
		stop()
		failfast.Exit(err)
	}
}

func init() {
	rootCmd.Flags().StringP("remote", "r", "", "set the osrc remote url")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-keyring", false, "do not mirror the access token into the system keyring")
	v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("no_keyring", rootCmd.PersistentFlags().Lookup("no-keyring"))
}

func setup() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	settings, err = config.Load(v, wd)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.EnableTimestamp(level == logger.LevelDebug)

	opts := []session.Option{
		session.WithDefaultRemote(settings.Remote),
		session.WithTokenEnv(settings.TokenEnv),
	}
	if !settings.NoKeyring {
		opts = append(opts, session.WithVault(session.Keyring{}))
	}
	store = session.NewStore(settings.SessionFile, opts...)
	return nil
}

// loadSession returns the stored session. A corrupted record is reported and
// replaced by defaults so that login can repair it.
func loadSession() (*session.Session, error) {
	sess, err := store.Load()
	var perr *session.ParseError
	if errors.As(err, &perr) {
		cmdLog.Warn("%s", failfast.Message(err))
		return sess, nil
	}
	return sess, err
}

func newClient(sess *session.Session) *api.Client {
	return api.New(sess, api.WithSignInPath(settings.SignInPath))
}
