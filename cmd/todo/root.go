package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"mytasks/internal/config"
	"mytasks/internal/storage"
	"mytasks/internal/tasks"
	"mytasks/internal/ui"
)

type options struct {
	configPath string
	dbPath     string
}

// app is everything a command needs once config and storage are open.
type app struct {
	cfg     config.Config
	kv      *storage.Store
	store   *tasks.Store
	logFile *os.File
}

func (a *app) Close() {
	if a.kv != nil {
		a.kv.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Manage a personal task list in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := ui.Run(a.store, a.kv, a.cfg); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.toml (default: user config dir)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to the SQLite database (overrides db_path)")
	cmd.AddCommand(newListCmd(opts))
	return cmd
}

func bootstrap(opts *options) (*app, error) {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}

	a := &app{cfg: cfg}
	if a.logFile, err = setupLogging(cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	a.kv, err = storage.Open(cfg.DBPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.store, err = tasks.Open(a.kv, cfg.TasksKey)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}
	log.Printf("opened %s (%s, %d tasks)", cfg.DBPath, a.store.LoadStatus(), a.store.Len())
	return a, nil
}

// setupLogging points the standard logger at path. The terminal belongs to
// the UI, so without a log file output is discarded.
func setupLogging(path string) (*os.File, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	f, err := tea.LogToFile(path, "todo")
	if err != nil {
		return nil, err
	}
	return f, nil
}
