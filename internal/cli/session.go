package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pyembed-labs/pyembed/internal/branding"
	"github.com/pyembed-labs/pyembed/internal/config"
	"github.com/pyembed-labs/pyembed/internal/fetch"
	"github.com/pyembed-labs/pyembed/internal/logsink"
	"github.com/pyembed-labs/pyembed/internal/runner"
	"github.com/pyembed-labs/pyembed/internal/setup"
)

// logBuffer is the renderer subscription's channel size.
const logBuffer = 1024

// session is the state of one command invocation.
type session struct {
	store    *config.Store
	settings config.Settings
	bus      *logsink.Broadcaster
	done     chan struct{}
}

var current *session

// startSession loads the config, applies flag overrides, and subscribes a
// terminal renderer to the log stream.
func startSession(cmd *cobra.Command) error {
	path := configPath
	if path == "" {
		path = config.FilePath()
	}
	store, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	v := store.Viper()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	settings, err := store.Settings()
	if err != nil {
		return err
	}
	level, err := logsink.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}

	bus := logsink.NewBroadcaster()
	ch, _ := bus.Subscribe(logBuffer)
	renderer := logsink.NewCharm(cmd.ErrOrStderr(), logsink.CharmOptions{
		Prefix: branding.CLIName(),
		Level:  level,
	})
	done := make(chan struct{})
	go func() {
		logsink.Forward(ch, renderer)
		close(done)
	}()

	current = &session{store: store, settings: settings, bus: bus, done: done}
	return nil
}

// close ends the subscription and waits for buffered lines to render.
func (s *session) close(w io.Writer) {
	if s == nil {
		return
	}
	s.bus.Close()
	<-s.done
	if n := s.bus.Dropped(); n > 0 {
		fmt.Fprintf(w, "%s log lines were dropped\n", humanize.Comma(int64(n)))
	}
}

// newInstaller builds an Installer from the session settings.
func (s *session) newInstaller() (*setup.Installer, error) {
	r := runner.New(runner.WithSink(s.bus))
	cfg, err := s.settings.SetupConfig(r, s.bus, progressLogger(s.bus))
	if err != nil {
		return nil, err
	}
	return setup.New(cfg, setup.WithSink(s.bus), setup.WithRunner(r))
}

// progressLogger logs download progress in 10% steps.
func progressLogger(sink logsink.Sink) fetch.ProgressFunc {
	next := 0.0
	return func(p float64) {
		if p < next {
			return
		}
		logsink.Info(sink, "downloading", "progress", fmt.Sprintf("%3.0f%%", p))
		for next <= p {
			next += 10
		}
	}
}
