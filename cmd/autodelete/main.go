package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ericzzh/mattermost-autodelete/server"
	"github.com/ericzzh/mattermost-autodelete/server/app"
	"github.com/ericzzh/mattermost-autodelete/server/bot"
	"github.com/ericzzh/mattermost-autodelete/server/command"
	"github.com/ericzzh/mattermost-autodelete/server/config"
	"github.com/ericzzh/mattermost-autodelete/server/mattermost"
	"github.com/ericzzh/mattermost-autodelete/server/sqlstore"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath string
	dotenvPath string
)

func Run(args []string) error {
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

var RootCmd = &cobra.Command{
	Use:           "autodelete",
	Short:         "Keep only the newest messages of Mattermost channels",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serveCmdF,
}

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

var AuditCmd = &cobra.Command{
	Use:   "audit <channel-id>",
	Short: "Show the limit edits of a channel, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  auditCmdF,
}

var RegisterCmd = &cobra.Command{
	Use:   "register <url>",
	Short: "Create the /autodelete slash command posting to url and print its token",
	Args:  cobra.ExactArgs(1),
	RunE:  registerCmdF,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the yaml configuration file")
	RootCmd.PersistentFlags().StringVar(&dotenvPath, "dotenv", ".env", "path to a .env file, ignored when missing")
	RootCmd.AddCommand(VersionCmd, AuditCmd, RegisterCmd)
}

func loadConfig() (*config.Configuration, error) {
	if _, err := os.Stat(dotenvPath); err == nil {
		if err := config.LoadDotenv(dotenvPath); err != nil {
			return nil, err
		}
	}
	return config.Load(configPath)
}

func newLogger(level string) (*mlog.Logger, *bot.Bot, error) {
	logger, err := bot.NewLogger(level)
	if err != nil {
		return nil, nil, err
	}
	return logger, bot.New(logger, nil), nil
}

func serveCmdF(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, b, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Shutdown()

	b.Infof("Starting autodelete %s for team %s", Version, cfg.TeamID)

	s, err := server.New(config.NewConfigService(cfg), logger)
	if err != nil {
		b.Errorf("%v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		b.Errorf("%v", err)
		return err
	}
	b.Infof("Bye")
	return nil
}

func auditCmdF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, b, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Shutdown()

	sqlStore, err := sqlstore.New(cfg.Database.Driver, cfg.Database.DataSource, b)
	if err != nil {
		return errors.Wrap(err, "failed creating the SQL store")
	}
	defer sqlStore.Close()

	records, err := sqlstore.NewRetentionStore(b, sqlStore).GetAuditRecords(args[0])
	if err != nil {
		return err
	}

	return printAudit(cmd.OutOrStdout(), records)
}

func printAudit(out io.Writer, records []app.AuditRecord) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTOR\tLIMIT")
	for _, r := range records {
		actor := r.ActorID
		if actor == "" {
			actor = "system"
		}
		limit := fmt.Sprint(r.NewLimit)
		if r.NewLimit == 0 {
			limit = "removed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", time.UnixMilli(r.Timestamp).UTC().Format(time.RFC3339), actor, limit)
	}
	return w.Flush()
}

func registerCmdF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ServerURL == "" || cfg.TeamID == "" || cfg.Token == "" {
		return errors.New("server_url, team_id and token are required")
	}

	created, _, err := mattermost.NewAPI(cfg.ServerURL, cfg.Token).CreateCommand(command.GetCommand(cfg.TeamID, args[0]))
	if err != nil {
		return errors.Wrap(err, "failed to create the slash command")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created /%s, set command_token to %s\n", created.Trigger, created.Token)
	return nil
}

func main() {
	if err := Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
