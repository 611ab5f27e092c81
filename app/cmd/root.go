package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"tasklist/app/config"
	"tasklist/app/logging"
	"tasklist/app/services"
	"tasklist/app/storage"
)

var configPath string

// NewRootCommand builds the command tree. serve is the default action.
func NewRootCommand(version string, stdout, stderr io.Writer) *cobra.Command {
	logger := logging.New(stderr)

	root := &cobra.Command{
		Use:           "tasklist",
		Short:         "Task list editor served as a web page",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), logger)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newExportCommand(stdout, logger))
	return root
}

// Execute runs the root command.
func Execute(version string) error {
	root := NewRootCommand(version, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// openApp loads config, opens storage and restores the task list.
// The caller closes the returned KV.
func openApp(ctx context.Context, logger *log.Logger) (*config.Config, *services.TaskListApp, storage.KV, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	policy, err := services.ParseCorruptPolicy(cfg.Storage.OnCorrupt)
	if err != nil {
		return nil, nil, nil, err
	}

	kv, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open storage: %w", err)
	}
	store, err := services.NewTaskStore(ctx, kv, services.StoreOptions{OnCorrupt: policy, Logger: logger})
	if err != nil {
		_ = kv.Close(ctx)
		return nil, nil, nil, err
	}

	app := services.NewTaskListApp(store, services.AppOptions{Logger: logger})
	return cfg, app, kv, nil
}
