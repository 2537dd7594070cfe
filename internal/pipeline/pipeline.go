// Package pipeline wires flattening, supplement loading and merging into the
// SBOM to inventory conversion.
package pipeline

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/saltyster/sbom-to-csv/internal/aggregate"
	"github.com/saltyster/sbom-to-csv/internal/config"
	"github.com/saltyster/sbom-to-csv/internal/flatten"
	"github.com/saltyster/sbom-to-csv/internal/merge"
	"github.com/saltyster/sbom-to-csv/internal/model"
	"github.com/saltyster/sbom-to-csv/internal/report"
	"github.com/saltyster/sbom-to-csv/internal/supplement"
)

type Options struct {
	RootKey   string
	Separator string
	BoolStyle model.BoolStyle
}

func OptionsFrom(cfg config.Config) Options {
	return Options{RootKey: cfg.RootKey, Separator: cfg.Separator, BoolStyle: cfg.BoolStyle}
}

type Result struct {
	Records []model.OutputRecord
	Stats   merge.Stats
	Summary aggregate.Summary
}

// Convert builds the inventory from an SBOM document and a supplement CSV
// held in readers. Nothing is written.
func Convert(doc, supplementCSV io.Reader, opts Options) (Result, error) {
	node, err := flatten.Decode(doc)
	if err != nil {
		return Result{}, err
	}
	pkgs, err := flatten.Records(node, opts.RootKey, opts.Separator)
	if err != nil {
		return Result{}, err
	}
	table, err := supplement.Load(supplementCSV)
	if err != nil {
		return Result{}, err
	}
	return build(pkgs, table, opts)
}

func build(pkgs []*model.FlatRecord, table *model.SupplementTable, opts Options) (Result, error) {
	records, stats, err := merge.BuildOutputRecords(pkgs, table, merge.Options{BoolStyle: opts.BoolStyle})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Records: records,
		Stats:   stats,
		Summary: aggregate.Summarize(records),
	}, nil
}

// Run converts the files named in cfg. Nothing is renamed into place until
// every record has been built and every output file, summary included, has
// been written next to its destination.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger) (Result, error) {
	start := time.Now()
	opts := OptionsFrom(cfg)

	logger.Debug("flattening SBOM", zap.String("path", cfg.SBOMPath), zap.String("root_key", cfg.RootKey))
	pkgs, err := flatten.FlattenFile(cfg.SBOMPath, cfg.RootKey, cfg.Separator)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	logger.Debug("loading supplement", zap.String("path", cfg.SupplementPath))
	table, err := supplement.LoadFile(cfg.SupplementPath)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res, err := build(pkgs, table, opts)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if cfg.CheckPurl {
		for _, p := range res.Summary.InvalidPurls {
			logger.Warn("invalid package URL",
				zap.String("package", p.Package),
				zap.String("purl", p.Purl),
				zap.String("reason", p.Reason))
		}
	}
	for _, name := range res.Stats.UnusedRows {
		logger.Debug("supplement row matched no package", zap.String("package", name))
	}

	inventory, err := report.InventoryOutput(cfg.OutputPath, res.Records)
	if err != nil {
		return Result{}, err
	}
	outputs := []report.Output{inventory}

	if cfg.SummaryPath != "" {
		rep := report.Report{
			Meta: report.ReportMeta{
				SBOMPath:       cfg.SBOMPath,
				SupplementPath: cfg.SupplementPath,
				OutputPath:     cfg.OutputPath,
				Timestamp:      time.Now().Format(time.RFC3339),
				RootKey:        cfg.RootKey,
			},
			Stats:   res.Stats,
			Summary: res.Summary,
		}
		summary, err := report.SummaryOutput(cfg.SummaryPath, rep)
		if err != nil {
			return Result{}, err
		}
		// The inventory is renamed last.
		outputs = []report.Output{summary, inventory}
	}

	if err := report.Commit(outputs...); err != nil {
		return Result{}, err
	}
	if cfg.SummaryPath != "" {
		logger.Debug("summary written", zap.String("path", cfg.SummaryPath))
	}

	logger.Info("inventory written",
		zap.String("path", cfg.OutputPath),
		zap.Int("packages", res.Stats.Packages),
		zap.Int("dual_source", res.Stats.DualSource),
		zap.Int("sbom_only", res.Stats.SbomOnly),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// RunFlatten writes the raw flattened package records, one column per key
// seen in any package.
func RunFlatten(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]*model.FlatRecord, error) {
	pkgs, err := flatten.FlattenFile(cfg.SBOMPath, cfg.RootKey, cfg.Separator)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	columns := aggregate.Columns(pkgs)
	if err := report.WriteFlat(cfg.OutputPath, pkgs, columns, cfg.BoolStyle); err != nil {
		return nil, err
	}

	logger.Info("flattened records written",
		zap.String("path", cfg.OutputPath),
		zap.Int("records", len(pkgs)),
		zap.Int("columns", len(columns)))
	return pkgs, nil
}
