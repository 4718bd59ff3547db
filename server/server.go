package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"

	"github.com/ericzzh/mattermost-autodelete/server/app"
	"github.com/ericzzh/mattermost-autodelete/server/bot"
	"github.com/ericzzh/mattermost-autodelete/server/command"
	"github.com/ericzzh/mattermost-autodelete/server/config"
	"github.com/ericzzh/mattermost-autodelete/server/mattermost"
	"github.com/ericzzh/mattermost-autodelete/server/sqlstore"
)

const shutdownTimeout = 10 * time.Second

// StartupError aborts the process before any command is accepted.
type StartupError struct {
	Err error
}

func (e *StartupError) Error() string {
	return "fatal startup error: " + e.Err.Error()
}

// Cause lets errors.Cause reach the underlying error.
func (e *StartupError) Cause() error {
	return e.Err
}

// Server wires the retention actor to Mattermost and the database.
type Server struct {
	config   config.Service
	bot      *bot.Bot
	sqlStore *sqlstore.SQLStore
	actor    *app.Actor
	listener *mattermost.Listener
	handler  http.Handler
	flush    func() error
	exit     func(code int)
}

// New connects to the database and assembles the components. Nothing runs until Run.
func New(configService config.Service, logger *mlog.Logger) (*Server, error) {
	cfg := configService.GetConfiguration()
	if err := cfg.IsValid(); err != nil {
		return nil, &StartupError{Err: err}
	}

	s := &Server{
		config: configService,
		bot:    bot.New(logger, nil),
		exit:   os.Exit,
	}
	s.flush = s.bot.Flush

	sqlStore, err := sqlstore.New(cfg.Database.Driver, cfg.Database.DataSource, s.bot)
	if err != nil {
		return nil, &StartupError{Err: errors.Wrap(err, "failed creating the SQL store")}
	}
	s.sqlStore = sqlStore

	messages := mattermost.NewClient(mattermost.NewAPI(cfg.ServerURL, cfg.Token))
	retentionStore := sqlstore.NewRetentionStore(s.bot, sqlStore)
	retention := app.NewRetentionService(messages, retentionStore, s.bot)

	s.actor = app.NewActor(retention, s.bot, cfg.QueueSize)
	s.listener = mattermost.NewListener(cfg.ServerURL, cfg.Token, cfg.TeamID, s.actor, s.bot)

	mux := http.NewServeMux()
	mux.Handle("/command", command.NewHandler(cfg.CommandToken, cfg.TeamID, s.bot, s.bot, s.actor, s.kill))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.handler = mux

	return s, nil
}

// kill is the killswitch: no drain, no cleanup. Only the log is flushed so the
// killswitch line survives the exit.
func (s *Server) kill(code int) {
	if err := s.flush(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush log: %v\n", err)
	}
	s.exit(code)
}

// Run serves until ctx is done, then stops accepting commands and lets the actor finish
// the command in progress.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.config.GetConfiguration()
	defer s.sqlStore.Close()

	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return &StartupError{Err: errors.Wrapf(err, "failed to listen on %s", cfg.ListenAddress)}
	}

	// the actor outlives ctx so the command in progress is never interrupted
	actorDone := make(chan struct{})
	go func() {
		s.actor.Run(context.Background())
		close(actorDone)
	}()
	if err := s.actor.Send(ctx, app.InitializeCommand{}); err != nil {
		_ = ln.Close()
		s.actor.Stop()
		<-actorDone
		return errors.Wrap(err, "failed to initialize")
	}

	listenerCtx, stopListener := context.WithCancel(ctx)
	listenerDone := make(chan struct{})
	go func() {
		s.listener.Run(listenerCtx)
		close(listenerDone)
	}()

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()
	s.bot.Infof("Accepting slash commands on %s", ln.Addr())

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != http.ErrServerClosed {
			runErr = errors.Wrap(err, "http server failed")
		}
	}

	s.bot.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.bot.Warnf("Failed to stop http server: %v", err)
	}

	stopListener()
	<-listenerDone
	s.actor.Stop()
	<-actorDone

	return runErr
}
