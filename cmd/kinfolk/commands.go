package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kinfolk/internal/family/dataset"
	familyservice "kinfolk/internal/family/service"
	"kinfolk/internal/family/store/person"
	"kinfolk/internal/family/store/union"
	"kinfolk/internal/hierarchy"
	"kinfolk/internal/platform/config"
	"kinfolk/internal/platform/logger"
	"kinfolk/internal/report"
	reportmodels "kinfolk/internal/report/models"
	reportservice "kinfolk/internal/report/service"
	"kinfolk/internal/report/store/export"
	"kinfolk/internal/sharetoken"
)

type rootOptions struct {
	dataPath   string
	logLevel   string
	skipCycles bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "kinfolk",
		Short: "Inspect family files and render reports offline",
		Long: `kinfolk reads a family file (YAML or JSON with "people" and "unions"
lists) and prints focal trees, ancestor lists or printable reports.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.dataPath, "data", "d", "", "family file to read")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&opts.skipCycles, "skip-cycles", false, "drop cyclic parent links instead of failing")
	_ = rootCmd.MarkPersistentFlagRequired("data")

	rootCmd.AddCommand(newTreeCmd(opts), newAncestorsCmd(opts), newReportCmd(opts))
	return rootCmd
}

// workspace holds services seeded from one family file.
type workspace struct {
	family  *familyservice.Service
	reports *reportservice.Service
}

func openWorkspace(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*workspace, error) {
	cfg := config.FromEnv()
	cfg.LogLevel = opts.logLevel
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg)

	snap, err := dataset.LoadFile(opts.dataPath)
	if err != nil {
		return nil, err
	}
	people := person.NewInMemory()
	unions := union.NewInMemory()
	if err := dataset.Seed(ctx, snap, people, unions); err != nil {
		return nil, err
	}
	log.Debug("dataset loaded", "path", opts.dataPath, "people", len(snap.People), "unions", len(snap.Unions))

	family := familyservice.New(people, unions, familyservice.WithLogger(log))
	signer := sharetoken.NewSigner(cfg.Reports.SigningKey, sharetoken.DefaultIssuer, sharetoken.DefaultAudience)
	policy := hierarchy.CyclePolicyFail
	if opts.skipCycles {
		policy = hierarchy.CyclePolicySkip
	}
	reports := reportservice.New(family, export.NewInMemory(), signer,
		reportservice.WithLogger(log),
		reportservice.WithCyclePolicy(policy),
	)
	return &workspace{family: family, reports: reports}, nil
}

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var focal string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the three-generation tree around a person as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws, err := openWorkspace(ctx, cmd, opts)
			if err != nil {
				return err
			}
			tree, err := ws.family.FocalTree(ctx, focal)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tree)
		},
	}
	cmd.Flags().StringVarP(&focal, "focal", "f", "", "id of the focal person")
	_ = cmd.MarkFlagRequired("focal")
	return cmd
}

func newAncestorsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ancestors",
		Short: "List people with no recorded parents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws, err := openWorkspace(ctx, cmd, opts)
			if err != nil {
				return err
			}
			ancestors, err := ws.family.Ancestors(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ancestors)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range ancestors {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.FullName, p.Lifespan())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		roots  []string
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a descendant report",
		Long: `Render a descendant report for the given roots. Without --root every
ancestor in the file becomes a root.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws, err := openWorkspace(ctx, cmd, opts)
			if err != nil {
				return err
			}
			req := &reportmodels.ExportRequest{
				RootIDs:      roots,
				AllAncestors: len(roots) == 0,
				Format:       format,
			}
			built, err := ws.reports.Build(ctx, req)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(built.Document.Body)
				return err
			}
			if err := os.WriteFile(out, built.Document.Body, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s report for %d people to %s\n",
				built.Document.Format, built.People, out)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&roots, "root", "r", nil, "root person id, repeatable")
	cmd.Flags().StringVar(&format, "format", string(report.FormatVisual), "visual, list or outline")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
