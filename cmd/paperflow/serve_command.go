package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"paperflow/internal/checkpoint"
	"paperflow/internal/daemon"
	"paperflow/internal/logging"
	"paperflow/internal/services/arxiv"
	"paperflow/internal/services/craft"
	"paperflow/internal/services/feishu"
	"paperflow/internal/services/llm"
	"paperflow/internal/stages"
	"paperflow/internal/workflow"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the paperflow daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.NewForPaths(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			store, err := checkpoint.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}

			resolver := arxiv.NewResolver()
			analyzer := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})
			archive := craft.NewClient(craft.Config{
				BaseURL:        cfg.Archive.BaseURL,
				APIToken:       cfg.Archive.APIToken,
				CollectionID:   cfg.Archive.CollectionID,
				TemplateID:     cfg.Archive.TemplateID,
				FolderID:       cfg.Archive.FolderID,
				TimeoutSeconds: cfg.Archive.TimeoutSeconds,
			})

			engine := workflow.NewEngine(store, workflow.Handlers{
				Ingest:        stages.NewIngest(resolver, logger),
				Extract:       stages.NewExtract(logger),
				Triage:        stages.NewTriage(analyzer, logger),
				ArchiveBase:   stages.NewArchiveBase(archive, logger),
				DeepRead:      stages.NewDeepRead(analyzer, archive, logger),
				UpdateArchive: stages.NewUpdateArchive(archive, logger),
			}, cfg, logger)

			var messenger *feishu.Client
			if cfg.Feishu.Enabled {
				messenger = feishu.NewClient(feishu.Config{
					AppID:             cfg.Feishu.AppID,
					AppSecret:         cfg.Feishu.AppSecret,
					VerificationToken: cfg.Feishu.VerificationToken,
					TimeoutSeconds:    cfg.Feishu.TimeoutSeconds,
				})
			}

			d, err := daemon.New(cfg, store, engine, messenger, logger)
			if err != nil {
				_ = store.Close()
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				_ = d.Close()
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "paperflow daemon listening on %s\n", d.Addr())

			<-runCtx.Done()
			return d.Close()
		},
	}
}
