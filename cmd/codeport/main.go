package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeport/internal/config"
	"codeport/internal/engine"
	"codeport/internal/export"
	"codeport/internal/graphstore"
	"codeport/internal/inference"
	"codeport/internal/model"
	"codeport/internal/pipeline"
	"codeport/internal/planner"
	"codeport/internal/resolver"
	"codeport/internal/retry"
)

var (
	rootCmd = &cobra.Command{
		Use:   "codeport",
		Short: "Legacy codebase analysis and migration planning",
	}
	dbPath     string
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the metadata graph database (SQLite)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(exportCmd)
}

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *graphstore.Store
	orch   *pipeline.Orchestrator
}

func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}

	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	store, err := graphstore.Open(cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph database: %w", err)
	}

	inf, err := inference.NewInferencer(ctx, inference.Options{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create inferencer: %w", err)
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.Pipeline.MaxRetries
	inferTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second

	eng := engine.New(store, inf, engine.Options{
		Workers:      cfg.Pipeline.Workers,
		MaxFileBytes: cfg.AI.MaxFileBytes,
		InferTimeout: inferTimeout,
		Retry:        retryCfg,
	}, logger)
	res := resolver.New(store, resolver.NewDefaultChain(inf, inferTimeout), resolver.Options{
		ClosureDepth: cfg.Pipeline.ClosureDepth,
		Retry:        retryCfg,
	}, logger)
	plan := planner.New(store, res, retryCfg, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		orch:   pipeline.New(store, eng, res, plan, retryCfg, logger),
	}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

var registerCmd = &cobra.Command{
	Use:   "register [path]",
	Short: "Register a legacy project for analysis",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = filepath.Base(abs)
		}

		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		project, err := a.orch.RegisterProject(ctx, name, abs)
		if err != nil {
			return err
		}
		fmt.Printf("Registered project %q\n  id:     %s\n  source: %s\n", project.Name, project.ID, project.SourceDir)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <project-id>",
	Short: "Run the full analysis pipeline for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		status, err := a.orch.Run(ctx, args[0])
		if err != nil {
			return fmt.Errorf("pipeline stopped in state %s: %w", status, err)
		}
		fmt.Printf("Pipeline finished: %s\n", status)
		if status == model.StatusNeedsFeedback {
			fmt.Println("Open feedback items require review; run again after resolving them.")
		}
		return nil
	},
}

var advanceCmd = &cobra.Command{
	Use:   "advance <project-id>",
	Short: "Run the single next pipeline stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		status, err := a.orch.Advance(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Now in state: %s\n", status)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <project-id>",
	Short: "Show a project's pipeline state and graph size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		project, err := a.orch.GetProject(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Project %q (%s)\n  state: %s\n", project.Name, project.ID, project.Status)

		for _, label := range []model.Label{
			model.LabelFile, model.LabelFunction, model.LabelClass, model.LabelEnum,
			model.LabelComponent, model.LabelDependency, model.LabelStrategy,
			model.LabelReport, model.LabelFeedback,
		} {
			n, err := a.store.CountNodes(ctx, project.ID, label)
			if err != nil {
				return err
			}
			if n > 0 {
				fmt.Printf("  %-16s %d\n", label, n)
			}
		}
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <project-id>",
	Short: "Print the migration strategy in execution order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		nodes, err := a.store.NodesByLabel(ctx, args[0], model.LabelStrategy)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			fmt.Println("No strategies yet; run the pipeline first.")
			return nil
		}

		sort.Slice(nodes, func(i, j int) bool {
			return nodes[i].Props.Int64("priority") < nodes[j].Props.Int64("priority")
		})
		for _, n := range nodes {
			fmt.Printf("%3d  %s\n", n.Props.Int64("priority"), n.Props.String("component_ref"))
			if actions, ok := n.Props["actions"].([]any); ok {
				for _, act := range actions {
					fmt.Printf("       - %v\n", act)
				}
			}
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Export the project's metadata graph as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		doc, err := export.ExportGraph(ctx, a.store, args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			return export.WriteJSON(os.Stdout, doc)
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteJSON(f, doc); err != nil {
			return err
		}
		fmt.Printf("Exported %d nodes and %d edges to %s\n", len(doc.Nodes), len(doc.Edges), out)
		return nil
	},
}

func init() {
	registerCmd.Flags().String("name", "", "Project name (defaults to the directory name)")
	exportCmd.Flags().StringP("output", "o", "", "Write the export to a file instead of stdout")
}
