package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/c360studio/mcskg/export"
	"github.com/c360studio/mcskg/graph"
	"github.com/c360studio/mcskg/metrics"
	"github.com/c360studio/mcskg/pipeline"
	"github.com/c360studio/mcskg/rule"
	"github.com/c360studio/mcskg/source"
	"github.com/c360studio/mcskg/sparql"
	"github.com/c360studio/mcskg/storage"
)

// Output formats besides the RDF export formats.
const (
	outputText   = "text"
	outputJSON   = "json"
	outputSPARQL = "sparql"
)

var outputFormats = []string{
	outputText,
	outputJSON,
	outputSPARQL,
	string(export.FormatTurtle),
	string(export.FormatNTriples),
	string(export.FormatJSONLD),
}

type outputOptions struct {
	format  string
	profile string
	publish bool
	store   bool
}

func (o *outputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", outputText,
		"Output format ("+strings.Join(outputFormats, ", ")+")")
	cmd.Flags().StringVar(&o.profile, "profile", "", "RDF export profile (minimal, bfo); defaults to export.profile")
	cmd.Flags().BoolVar(&o.publish, "publish", false, "Publish rule entities to NATS")
	cmd.Flags().BoolVar(&o.store, "store", false, "Save rules to the NATS KV rule bucket")
}

func (o *outputOptions) validate() error {
	if !slices.Contains(outputFormats, o.format) {
		return fmt.Errorf("unsupported format: %s", o.format)
	}
	if o.profile != "" {
		if _, err := export.ParseProfile(o.profile); err != nil {
			return err
		}
	}
	return nil
}

func generateCmd(a *app) *cobra.Command {
	var (
		inputs []string
		strict bool
		out    outputOptions
	)

	cmd := &cobra.Command{
		Use:   "generate [statement...]",
		Short: "Generate rules and SPARQL updates from statements",
		Long: `Generate concrete rules and SPARQL updates.

Statements come from the arguments, from statement files (-i, globs with **
allowed, one statement per line, # comments), from input.patterns in the
config, or from stdin, in that order of preference. Statements that cannot
be processed are logged and skipped.`,
		Example: `  mcskg generate "The chair is made of wood."
  mcskg generate -i 'plant/**/*.mcsk' -f turtle --profile bfo
  cat statements.txt | mcskg generate -f sparql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}

			statements, err := a.collectStatements(cmd.InOrStdin(), args, inputs)
			if err != nil {
				return err
			}
			if len(statements) == 0 {
				return errors.New("no statements given")
			}

			gen := a.newGenerator(nil)
			res, err := gen.Batch(cmd.Context(), statements)
			if err != nil {
				return err
			}

			if err := a.writeBatch(cmd.OutOrStdout(), out, res); err != nil {
				return err
			}
			dest, closeSinks, err := a.openSinks(cmd.Context(), out)
			if err != nil {
				return err
			}
			defer closeSinks()
			if err := a.deliver(cmd.Context(), dest, res.Results()); err != nil {
				return err
			}

			a.logger.Info("Generation complete",
				"statements", len(statements),
				"rules", len(res.Rules),
				"skipped", len(res.Failures))
			if strict && len(res.Failures) > 0 {
				return fmt.Errorf("%d of %d statements skipped", len(res.Failures), len(statements))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Statement file or glob (repeatable)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any statement is skipped")
	out.addFlags(cmd)

	return cmd
}

// collectStatements gathers statements from args, then input files, then the
// configured patterns, then stdin.
func (a *app) collectStatements(stdin io.Reader, args, inputs []string) ([]string, error) {
	statements := append([]string(nil), args...)

	patterns := inputs
	if len(args) == 0 && len(patterns) == 0 {
		patterns = a.cfg.Input.Patterns
	}
	if len(patterns) > 0 {
		files, err := source.ResolveFiles(patterns)
		if err != nil {
			return nil, err
		}
		stmts, err := source.ReadFiles(files)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("Read statement files", "files", len(files), "statements", len(stmts))
		statements = append(statements, source.Texts(stmts)...)
	}

	if len(statements) == 0 && stdin != nil {
		stmts, err := source.ParseStatements(stdin, "-")
		if err != nil {
			return nil, err
		}
		statements = source.Texts(stmts)
	}
	return statements, nil
}

func (a *app) newGenerator(m metrics.Metrics) *pipeline.Generator {
	return pipeline.NewGenerator(
		pipeline.WithTranslator(sparql.NewTranslator(a.cfg.TranslatorOptions()...)),
		pipeline.WithLogger(a.logger),
		pipeline.WithMetrics(m),
	)
}

func (a *app) writeBatch(w io.Writer, out outputOptions, res pipeline.BatchResult) error {
	switch out.format {
	case outputText:
		for i, r := range res.Results() {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "# %s\n# template %d: %s\n%s", r.Statement, r.Rule.ID, r.Rule.Expression, r.Query)
		}
		return nil
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case outputSPARQL:
		// One update request; each operation keeps its own prologue.
		_, err := io.WriteString(w, strings.Join(res.Queries, ";\n"))
		return err
	}

	profile := export.Profile(a.cfg.Export.Profile)
	if out.profile != "" {
		profile = export.Profile(out.profile)
	}
	exporter := a.cfg.NewExporter(profile)
	for _, r := range res.Results() {
		if err := exporter.Add(r.Statement, r.Rule, r.Query); err != nil {
			return err
		}
	}
	data, err := exporter.Export(export.Format(out.format))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, data)
	return err
}

func (a *app) publishResults(ctx context.Context, p graph.Publisher, results []pipeline.Result) error {
	now := time.Now().UTC()
	for _, r := range results {
		payload, err := graph.BuildRuleEntity(r.Statement, r.Rule, r.Query, now)
		if err != nil {
			return err
		}
		if err := graph.Publish(ctx, p, a.cfg.NATS.Subject, payload); err != nil {
			return err
		}
	}
	a.logger.Info("Published rule entities",
		"count", len(results),
		"subject", a.cfg.NATS.Subject)
	return nil
}

// ruleSaver is satisfied by *storage.RuleStore.
type ruleSaver interface {
	Save(ctx context.Context, statement string, cr rule.ConcreteRule, query string) (*storage.StoredRule, bool, error)
}

func (a *app) storeResults(ctx context.Context, store ruleSaver, results []pipeline.Result) error {
	created := 0
	for _, r := range results {
		_, isNew, err := store.Save(ctx, r.Statement, r.Rule, r.Query)
		if err != nil {
			return err
		}
		if isNew {
			created++
		}
	}
	a.logger.Info("Stored rules",
		"count", len(results),
		"created", created,
		"bucket", a.cfg.NATS.Bucket)
	return nil
}

// sinks are the optional NATS destinations for generated rules. Delivery
// failures are counted on metrics when it is set.
type sinks struct {
	pub     graph.Publisher
	store   ruleSaver
	metrics metrics.Metrics
}

// openSinks connects to NATS when publishing or storing is on. The returned
// func flushes and closes the connection.
func (a *app) openSinks(ctx context.Context, out outputOptions) (sinks, func(), error) {
	publish := out.publish || a.cfg.NATS.Enabled
	store := out.store || a.cfg.NATS.Store
	if !publish && !store {
		return sinks{}, func() {}, nil
	}

	conn, err := graph.Connect(a.cfg.NATS.URL)
	if err != nil {
		return sinks{}, nil, err
	}
	closeConn := func() {
		if err := conn.FlushTimeout(5 * time.Second); err != nil {
			a.logger.Warn("Failed to flush NATS connection", "error", err)
		}
		conn.Close()
	}

	var s sinks
	if publish {
		s.pub = conn
	}
	if store {
		rs, err := a.openRuleStore(ctx, conn)
		if err != nil {
			conn.Close()
			return sinks{}, nil, err
		}
		s.store = rs
	}
	return s, closeConn, nil
}

func (a *app) openRuleStore(ctx context.Context, conn *nats.Conn) (*storage.RuleStore, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return storage.NewRuleStore(ctx, js, a.cfg.NATS.Bucket)
}

func (a *app) deliver(ctx context.Context, s sinks, results []pipeline.Result) error {
	if len(results) == 0 {
		return nil
	}
	if s.pub != nil {
		start := time.Now()
		err := a.publishResults(ctx, s.pub, results)
		s.observe(metrics.StagePublish, start, err)
		if err != nil {
			return err
		}
	}
	if s.store != nil {
		start := time.Now()
		err := a.storeResults(ctx, s.store, results)
		s.observe(metrics.StageStore, start, err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s sinks) observe(stage string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveStageDuration(stage, time.Since(start).Seconds())
	if err != nil {
		s.metrics.IncrementFailures(stage, pipeline.FailureReason(err))
	}
}
