package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/callscope/config"
	"github.com/maastricht-university/callscope/metrics"
	"github.com/maastricht-university/callscope/orchestrator"
	"github.com/maastricht-university/callscope/transcript"
)

var version = "dev"

type rootOptions struct {
	configPath string
	logFormat  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "callscope",
		Short:         "Analyze two-party call transcripts for call quality and compliance",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (default: guessed from CONFIG_ENV)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override pipeline.log_level")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newMetricsCmd(opts),
		newComplianceCmd(opts),
		newProfanityCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and builds the logger it describes.
func (o *rootOptions) load(stderr io.Writer) (*cfg.Root, *logrus.Logger, error) {
	c, err := cfg.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		c.Pipeline.LogLvl = o.logLevel
	}

	log := logrus.New()
	log.SetOutput(stderr)
	lvl, err := logrus.ParseLevel(c.Pipeline.LogLvl)
	if err != nil {
		return nil, nil, err
	}
	log.SetLevel(lvl)
	switch o.logFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", o.logFormat)
	}
	return c, log, nil
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		format    string
		out       string
		tolerance float64
		matcher   string
		strict    bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <transcript.(json|yaml)>",
		Short: "Run duration, compliance and profanity analyses on a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, log, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tolerance") {
				c.Analysis.Tolerance = tolerance
			}
			if cmd.Flags().Changed("matcher") {
				c.Analysis.Matcher = matcher
			}
			if cmd.Flags().Changed("strict") {
				c.Analysis.Strict = strict
			}
			if err := c.Validate(); err != nil {
				return err
			}

			p, err := orchestrator.NewPipeline(c, log)
			if err != nil {
				return err
			}
			r, err := p.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), out, func(w io.Writer) error {
				if format == "text" {
					return orchestrator.WriteText(w, r)
				}
				return orchestrator.WriteJSON(w, r)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or text")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().Float64Var(&tolerance, "tolerance", metrics.DefaultTolerance, "boundary tolerance in seconds")
	cmd.Flags().StringVar(&matcher, "matcher", cfg.MatcherPattern, "matcher backend: pattern or llm")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of treating classifier errors as no match")
	return cmd
}

func newMetricsCmd(root *rootOptions) *cobra.Command {
	var tolerance float64
	cmd := &cobra.Command{
		Use:   "metrics <transcript.(json|yaml)>",
		Short: "Print only the silence / speaking / overtalk breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, log, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tolerance") {
				c.Analysis.Tolerance = tolerance
			}
			if err := c.Validate(); err != nil {
				return err
			}
			segs, err := loadSegments(args[0])
			if err != nil {
				return err
			}
			b := metrics.Classify(segs, c.Analysis.Tolerance)
			log.WithField("segments", len(segs)).Debug("classified durations")
			return orchestrator.WriteJSON(cmd.OutOrStdout(), struct {
				Durations metrics.Breakdown `json:"durations"`
				Summary   metrics.Summary   `json:"summary"`
			}{b, metrics.Summarize(b)})
		},
	}
	cmd.Flags().Float64Var(&tolerance, "tolerance", metrics.DefaultTolerance, "boundary tolerance in seconds")
	return cmd
}

func newComplianceCmd(root *rootOptions) *cobra.Command {
	return newDetectorCmd(root, "compliance", "Check that sensitive information follows identity verification",
		func(cmd *cobra.Command, p *orchestrator.Pipeline, segs []transcript.Segment) (any, error) {
			return p.CheckCompliance(cmd.Context(), segs)
		})
}

func newProfanityCmd(root *rootOptions) *cobra.Command {
	return newDetectorCmd(root, "profanity", "Flag profanity per speaker",
		func(cmd *cobra.Command, p *orchestrator.Pipeline, segs []transcript.Segment) (any, error) {
			return p.DetectProfanity(cmd.Context(), segs)
		})
}

type detectFunc func(*cobra.Command, *orchestrator.Pipeline, []transcript.Segment) (any, error)

func newDetectorCmd(root *rootOptions, name, short string, run detectFunc) *cobra.Command {
	var (
		matcher string
		strict  bool
	)
	cmd := &cobra.Command{
		Use:   name + " <transcript.(json|yaml)>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, log, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("matcher") {
				c.Analysis.Matcher = matcher
			}
			if cmd.Flags().Changed("strict") {
				c.Analysis.Strict = strict
			}
			if err := c.Validate(); err != nil {
				return err
			}
			segs, err := loadSegments(args[0])
			if err != nil {
				return err
			}
			p, err := orchestrator.NewPipeline(c, log)
			if err != nil {
				return err
			}
			res, err := run(cmd, p, segs)
			if err != nil {
				return err
			}
			return orchestrator.WriteJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&matcher, "matcher", cfg.MatcherPattern, "matcher backend: pattern or llm")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of treating classifier errors as no match")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func loadSegments(path string) ([]transcript.Segment, error) {
	recs, err := transcript.Load(path)
	if err != nil {
		return nil, err
	}
	segs, err := transcript.Normalize(recs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return segs, nil
}

func write(stdout io.Writer, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
