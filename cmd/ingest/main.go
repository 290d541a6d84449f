package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/app"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/drive"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/pipeline"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/storage"
	"github.com/andresuchdata/qms-dashboard/backend-go/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("ingest failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ingest",
		Usage: "Parse quality exports and compute monthly site KPIs",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "persist",
				Usage: "Store KPIs and plants in the configured database instead of only printing them",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Force the export type of every file (complaints, deliveries, deviations, ppap, plants)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of files parsed concurrently (default from INGEST_WORKERS)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the JSON result to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: func(c *cli.Context) error {
			logger.UseJSON(os.Stderr)
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "files",
				Usage:     "Ingest local files or directories",
				ArgsUsage: "<file|dir>...",
				Action: func(c *cli.Context) error {
					inputs, err := localInputs(c.Context, c.Args().Slice())
					if err != nil {
						return err
					}
					return run(c, inputs)
				},
			},
			{
				Name:  "bucket",
				Usage: "Ingest every export below a prefix of the configured S3 bucket",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "Object key prefix", EnvVars: []string{"STORAGE_PREFIX"}},
				},
				Action: func(c *cli.Context) error {
					client, err := storage.NewMinioClient(config.Load().Storage)
					if err != nil {
						return err
					}
					inputs, err := storage.LoadInputs(c.Context, client, c.String("prefix"))
					if err != nil {
						return err
					}
					return run(c, inputs)
				},
			},
			{
				Name:  "drive",
				Usage: "Ingest every export of a Google Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder-id", Usage: "Drive folder id", EnvVars: []string{"DRIVE_FOLDER_ID"}},
					&cli.StringFlag{Name: "folder-path", Usage: "Folder path below My Drive, e.g. QMS/exports"},
				},
				Action: func(c *cli.Context) error {
					inputs, err := driveInputs(c)
					if err != nil {
						return err
					}
					return run(c, inputs)
				},
			},
		},
	}
}

// localInputs reads files directly and directories through the local storage
// client, skipping unsupported files in directories.
func localInputs(ctx context.Context, paths []string) ([]pipeline.Input, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files given")
	}
	var inputs []pipeline.Input
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			client, err := storage.NewLocalClient(p)
			if err != nil {
				return nil, err
			}
			dirInputs, err := storage.LoadInputs(ctx, client, "")
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, dirInputs...)
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, pipeline.Input{Name: filepath.Base(p), Data: data})
	}
	return inputs, nil
}

func driveInputs(c *cli.Context) ([]pipeline.Input, error) {
	cfg := config.Load()
	if cfg.Drive.CredentialsJSON == "" {
		return nil, fmt.Errorf("GOOGLE_DRIVE_CREDENTIALS_JSON is not set")
	}
	svc, err := drive.NewService(c.Context, cfg.Drive.CredentialsJSON)
	if err != nil {
		return nil, err
	}

	folderID := c.String("folder-id")
	if folderID == "" {
		folderID = cfg.Drive.FolderID
	}
	if path := c.String("folder-path"); path != "" {
		if folderID, err = svc.FindFolderByPath(c.Context, path); err != nil {
			return nil, err
		}
	}
	return drive.NewSource(svc, logger.Component("drive")).Inputs(c.Context, folderID)
}

func run(c *cli.Context, inputs []pipeline.Input) error {
	if raw := c.String("kind"); raw != "" {
		kind, ok := pipeline.ParseKind(strings.ToLower(raw))
		if !ok {
			return fmt.Errorf("unknown kind %q", raw)
		}
		for i := range inputs {
			inputs[i].Kind = kind
		}
	}

	cfg := config.Load()
	if w := c.Int("workers"); w > 0 {
		cfg.Ingest.WorkerCount = w
	}
	log := logger.Component("ingest")

	var result interface{}
	if c.Bool("persist") {
		a, err := app.New(c.Context, cfg, "cli", log)
		if err != nil {
			return err
		}
		defer a.Close()
		report, err := a.Service.Ingest(c.Context, inputs)
		if err != nil {
			return err
		}
		result = report
	} else {
		parser, err := app.Parser(cfg.Ingest, log)
		if err != nil {
			return err
		}
		o := pipeline.NewOrchestrator(app.PipelineConfig("cli", cfg.Ingest), parser, pipeline.WithLogger(log))
		batch, err := o.Run(c.Context, inputs)
		if err != nil {
			return err
		}
		result = batch
	}

	return writeJSON(c.String("output"), result)
}

func writeJSON(path string, v interface{}) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
