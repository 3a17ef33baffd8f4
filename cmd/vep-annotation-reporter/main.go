// Package main provides the vep-annotation-reporter command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/apaul7/VAtools/internal/annotate"
	"github.com/apaul7/VAtools/internal/report"
	"github.com/apaul7/VAtools/internal/vcf"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var usage *usageError
		if errors.As(err, &usage) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks errors caused by bad invocations rather than bad
// inputs, so they map to their own exit code.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type reportOptions struct {
	TSVPath    string
	VCFPath    string
	Fields     []string
	OutputPath string
	InfoKey    string
	LogLevel   string
}

func newRootCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "vep-annotation-reporter <input-tsv> <input-vcf> <vep-field>...",
		Short: "Add VEP annotations from a VCF to a tab-delimited report",
		Long: `Add VEP annotations from a VCF to a tab-delimited report.

The report must carry CHROM, POS, REF and ALT columns; each requested
VEP field is appended as a new column, matched per row and per ALT
allele against the VCF's CSQ annotations. Plain, gzip and bgzip
compressed VCFs are accepted, '-' reads from stdin.`,
		Example: `  vep-annotation-reporter report.tsv annotated.vcf Consequence SYMBOL
  vep-annotation-reporter -o merged.tsv report.tsv annotated.vcf Consequence
  zcat annotated.vcf.gz | vep-annotation-reporter -o merged.tsv report.tsv - Consequence`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return &usageError{fmt.Errorf("requires an input TSV, an input VCF, and at least one VEP field")}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TSVPath = args[0]
			opts.VCFPath = args[1]
			opts.Fields = args[2:]
			opts.InfoKey = viper.GetString("info-key")
			opts.LogLevel = viper.GetString("log-level")
			return runReport(opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&opts.OutputPath, "output-tsv", "o", "", "path to write the output report (default: input VCF path with a .tsv ending)")
	cmd.Flags().String("info-key", annotate.DefaultInfoKey, "INFO field the VEP annotations are stored under")
	cmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")
	viper.BindPFlag("info-key", cmd.Flags().Lookup("info-key"))
	viper.BindPFlag("log-level", cmd.Flags().Lookup("log-level"))

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	cmd.Version = fmt.Sprintf("%s (%s) built %s", version, commit, date)
	cmd.AddCommand(newConfigCmd())
	cobra.OnInitialize(initConfig)

	return cmd
}

func runReport(opts reportOptions) error {
	logger, err := buildLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath, err = defaultOutputPath(opts.VCFPath)
		if err != nil {
			return err
		}
	}

	parser, err := vcf.NewParser(opts.VCFPath)
	if err != nil {
		return err
	}
	defer parser.Close()

	rows, err := report.NewReader(opts.TSVPath)
	if err != nil {
		return err
	}
	defer rows.Close()

	writer := &lazyWriter{path: outputPath}

	logger.Info("merging annotations",
		zap.String("vcf", opts.VCFPath),
		zap.String("report", opts.TSVPath),
		zap.String("output", outputPath),
		zap.Strings("fields", opts.Fields))

	reporter := annotate.NewReporter(opts.Fields)
	reporter.SetInfoKey(opts.InfoKey)
	reporter.SetLogger(logger)

	if err := reporter.Run(parser, rows, writer); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// lazyWriter defers creating the output file until the merge writes
// its header, which happens only after the VCF indexed cleanly. A run
// that aborts while indexing leaves no output file behind.
type lazyWriter struct {
	path string
	w    *report.Writer
}

func (l *lazyWriter) WriteHeader(columns, annotationColumns []string) error {
	w, err := report.NewWriter(l.path)
	if err != nil {
		return err
	}
	l.w = w
	return l.w.WriteHeader(columns, annotationColumns)
}

func (l *lazyWriter) WriteRow(cells []string) error {
	return l.w.WriteRow(cells)
}

func (l *lazyWriter) Flush() error {
	return l.w.Flush()
}

func (l *lazyWriter) Close() error {
	if l.w == nil {
		return nil
	}
	return l.w.Close()
}

// defaultOutputPath derives the output path from the VCF path: the name
// is cut at the last ".vcf" and ".tsv" appended, so sample.vcf and
// sample.vcf.gz both become sample.tsv. A VCF read from stdin has no
// path to derive from.
func defaultOutputPath(vcfPath string) (string, error) {
	if vcfPath == "-" {
		return "", &usageError{fmt.Errorf("reading the VCF from stdin requires --output-tsv")}
	}
	if i := strings.LastIndex(vcfPath, ".vcf"); i > 0 {
		return vcfPath[:i] + ".tsv", nil
	}
	return vcfPath + ".tsv", nil
}

// buildLogger builds a console logger on stderr, keeping log lines out
// of a report written to stdout.
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, &usageError{fmt.Errorf("invalid log level %q", level)}
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}
