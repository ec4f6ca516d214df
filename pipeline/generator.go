// Package pipeline runs MCSK statements through classification,
// specialization and query translation.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/c360studio/mcskg/metrics"
	"github.com/c360studio/mcskg/rule"
	"github.com/c360studio/mcskg/sparql"
)

// Generator turns statements into concrete rules and SPARQL updates.
// It holds no per-call state and may be shared between goroutines.
type Generator struct {
	translator *sparql.Translator
	logger     *slog.Logger
	metrics    metrics.Metrics
}

// Option configures a Generator.
type Option func(*Generator)

// WithTranslator sets the query translator.
func WithTranslator(t *sparql.Translator) Option {
	return func(g *Generator) { g.translator = t }
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// NewGenerator creates a Generator with the default translator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		translator: sparql.NewTranslator(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateConcreteRule classifies the statement and specializes the matching
// template with the entity names it contains.
func (g *Generator) GenerateConcreteRule(statement string) (rule.ConcreteRule, error) {
	start := time.Now()
	tmpl, err := rule.Classify(statement)
	g.observe(metrics.StageClassify, start)
	if err != nil {
		g.fail(metrics.StageClassify, err)
		return rule.ConcreteRule{}, err
	}
	if g.metrics != nil {
		g.metrics.ObserveClassified(tmpl.ID)
	}

	start = time.Now()
	cr, err := rule.Specialize(tmpl, statement)
	g.observe(metrics.StageSpecialize, start)
	if err != nil {
		g.fail(metrics.StageSpecialize, err)
		return rule.ConcreteRule{}, err
	}
	return cr, nil
}

// GenerateSPARQLQuery translates a concrete rule into an INSERT/WHERE update.
func (g *Generator) GenerateSPARQLQuery(cr rule.ConcreteRule) (string, error) {
	start := time.Now()
	query, err := g.translator.Translate(cr)
	g.observe(metrics.StageTranslate, start)
	if err != nil {
		g.fail(metrics.StageTranslate, err)
		return "", err
	}
	return query, nil
}

// Result is one successfully processed statement.
type Result struct {
	Statement string            `json:"statement"`
	Rule      rule.ConcreteRule `json:"rule"`
	Query     string            `json:"query"`
}

// Generate runs a single statement through the whole pipeline.
func (g *Generator) Generate(statement string) (Result, error) {
	cr, err := g.GenerateConcreteRule(statement)
	if err != nil {
		return Result{}, err
	}
	query, err := g.GenerateSPARQLQuery(cr)
	if err != nil {
		return Result{}, err
	}
	return Result{Statement: statement, Rule: cr, Query: query}, nil
}

// Failure records a statement that was skipped.
type Failure struct {
	Index     int    `json:"index"`
	Statement string `json:"statement"`
	Message   string `json:"error"`
	Err       error  `json:"-"`
}

// BatchResult holds the outcome of a batch. Statements, Rules and Queries are
// parallel slices of the successful items in input order.
type BatchResult struct {
	Statements []string            `json:"statements"`
	Rules      []rule.ConcreteRule `json:"rules"`
	Queries    []string            `json:"queries"`
	Failures   []Failure           `json:"failures,omitempty"`
}

// Results returns the successful items as Result values.
func (b BatchResult) Results() []Result {
	out := make([]Result, len(b.Rules))
	for i := range b.Rules {
		out[i] = Result{Statement: b.Statements[i], Rule: b.Rules[i], Query: b.Queries[i]}
	}
	return out
}

// Batch processes statements in order. Input errors are recorded as failures
// and the batch continues with the next statement. Cancelling ctx stops the
// batch and discards its partial results.
func (g *Generator) Batch(ctx context.Context, statements []string) (BatchResult, error) {
	var res BatchResult
	for i, statement := range statements {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, err
		}

		r, err := g.Generate(statement)
		if err != nil {
			g.logger.Warn("Skipping statement",
				"index", i,
				"statement", statement,
				"error", err)
			res.Failures = append(res.Failures, Failure{
				Index:     i,
				Statement: statement,
				Message:   err.Error(),
				Err:       err,
			})
			continue
		}

		g.logger.Debug("Generated rule",
			"index", i,
			"template", r.Rule.ID,
			"expression", r.Rule.Expression)
		res.Statements = append(res.Statements, r.Statement)
		res.Rules = append(res.Rules, r.Rule)
		res.Queries = append(res.Queries, r.Query)
	}

	if g.metrics != nil {
		g.metrics.ObserveBatch(len(statements), len(res.Failures))
	}
	return res, nil
}

func (g *Generator) observe(stage string, start time.Time) {
	if g.metrics != nil {
		g.metrics.ObserveStageDuration(stage, time.Since(start).Seconds())
	}
}

func (g *Generator) fail(stage string, err error) {
	if g.metrics != nil {
		g.metrics.IncrementFailures(stage, FailureReason(err))
	}
}

// FailureReason maps an error to a short metric label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, rule.ErrUnrecognizedStatement):
		return "unrecognized"
	case errors.Is(err, rule.ErrExtraction):
		return "extraction"
	case errors.Is(err, rule.ErrUnknownRuleType):
		return "unknown_rule_type"
	case errors.Is(err, rule.ErrMalformedExpression):
		return "malformed_expression"
	default:
		return "other"
	}
}

var defaultGenerator = NewGenerator()

// GenerateConcreteRule runs the default generator.
func GenerateConcreteRule(statement string) (rule.ConcreteRule, error) {
	return defaultGenerator.GenerateConcreteRule(statement)
}

// GenerateSPARQLQuery runs the default generator.
func GenerateSPARQLQuery(cr rule.ConcreteRule) (string, error) {
	return defaultGenerator.GenerateSPARQLQuery(cr)
}
