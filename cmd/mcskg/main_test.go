package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/mcskg/config"
	"github.com/c360studio/mcskg/export"
	"github.com/c360studio/mcskg/metrics"
	"github.com/c360studio/mcskg/pipeline"
	"github.com/c360studio/mcskg/rule"
	"github.com/c360studio/mcskg/storage"
)

// execute runs the root command with an isolated home directory.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := rootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func testApp() *app {
	return &app{
		cfg:    config.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	messages [][]byte
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.messages = append(f.messages, data)
	return nil
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "mcskg version 0.1.0 (build: dev)\n", out)
}

func TestConfigInit(t *testing.T) {
	out, _, err := execute(t, "", "config", "init")
	require.NoError(t, err)

	path := filepath.Join(os.Getenv("HOME"), config.UserConfigDir, config.UserConfigFile)
	assert.Equal(t, "Created "+path+"\n", out)
	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Ontology.Namespace, cfg.Ontology.Namespace)

	cmd := rootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"config", "init"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, path+" already exists\n", buf.String())
}

func TestConfigShow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ontology:\n  namespace: http://plant.example/ns/\n"), 0644))

	out, _, err := execute(t, "", "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "namespace: http://plant.example/ns/")
	assert.Contains(t, out, "fresh_uri: struuid")
}

func TestGenerate_Text(t *testing.T) {
	out, _, err := execute(t, "", "generate", "The chair is made of wood.")
	require.NoError(t, err)

	assert.Contains(t, out, "# The chair is made of wood.\n")
	assert.Contains(t, out, "# template 4: ∀x (chair(x) → ∃y (wood(y) ∧ partOf(y, x)))\n")
	assert.Contains(t, out, "INSERT {")
	assert.Contains(t, out, "WHERE {")
}

func TestGenerate_SPARQL(t *testing.T) {
	out, _, err := execute(t, "", "generate", "-f", "sparql",
		"After drilling you should deburr.",
		"Lego is the input of lego assembly.")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "INSERT {"))
	assert.Contains(t, out, ";\n")
}

func TestGenerate_JSONWithFailures(t *testing.T) {
	out, stderr, err := execute(t, "", "generate", "-f", "json",
		"The chair is made of wood.",
		"The weather is nice.")
	require.NoError(t, err)

	var res pipeline.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Rules, 1)
	assert.Equal(t, rule.TemplateProductMaterial, res.Rules[0].ID)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Index)
	assert.Contains(t, res.Failures[0].Message, "unrecognized")
	assert.Contains(t, stderr, "Skipping statement")
}

func TestGenerate_Strict(t *testing.T) {
	_, _, err := execute(t, "", "generate", "--strict",
		"The chair is made of wood.",
		"The weather is nice.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 statements skipped")
}

func TestGenerate_Stdin(t *testing.T) {
	stdin := "# plant line 1\n\nThe chair is made of wood.\nGearbox includes picking and fixing.\n"
	out, _, err := execute(t, stdin, "generate", "-f", "sparql")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "INSERT {"))
}

func TestGenerate_InputFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "line1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "line1", "a.mcsk"),
		[]byte("The drying process involves a dryer machine.\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.mcsk"),
		[]byte("The result of painting is a painted object.\n"), 0644))

	out, _, err := execute(t, "", "generate", "-f", "json", "-i", filepath.Join(dir, "**", "*.mcsk"))
	require.NoError(t, err)

	var res pipeline.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Rules, 2)
	assert.Empty(t, res.Failures)
}

func TestGenerate_RDF(t *testing.T) {
	out, _, err := execute(t, "", "generate", "-f", "turtle", "--profile", "bfo", "The chair is made of wood.")
	require.NoError(t, err)
	assert.Contains(t, out, "owl:Class")
	assert.Contains(t, out, "rdfs:subClassOf")

	out, _, err = execute(t, "", "generate", "-f", "ntriples", "The chair is made of wood.")
	require.NoError(t, err)
	assert.NotContains(t, out, "@prefix")
	assert.Contains(t, out, " .\n")
}

func TestGenerate_Errors(t *testing.T) {
	_, _, err := execute(t, "", "generate", "-f", "yaml", "The chair is made of wood.")
	assert.ErrorContains(t, err, "unsupported format")

	_, _, err = execute(t, "", "generate", "--profile", "cco", "The chair is made of wood.")
	assert.Error(t, err)

	_, _, err = execute(t, "", "generate")
	assert.ErrorContains(t, err, "no statements given")

	_, _, err = execute(t, "", "generate", "-i", filepath.Join(t.TempDir(), "*.mcsk"))
	assert.ErrorContains(t, err, "no files match")
}

func TestGenerate_ConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "mcskg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
ontology:
  namespace: "urn:plant:"
query:
  omit_prefixes: true
`), 0644))

	out, _, err := execute(t, "", "--config", cfgPath, "generate", "-f", "sparql", "The chair is made of wood.")
	require.NoError(t, err)
	assert.Contains(t, out, "<urn:plant:chair>")
	assert.NotContains(t, out, "PREFIX")
}

func TestClassify(t *testing.T) {
	out, _, err := execute(t, "", "classify", "Gearbox includes picking and fixing.")
	require.NoError(t, err)
	assert.Contains(t, out, "template 7 (assembly-steps)")
	assert.NotContains(t, out, "rule:")

	out, _, err = execute(t, "", "classify", "-s", "Gearbox", "includes", "picking", "and", "fixing.")
	require.NoError(t, err)
	assert.Contains(t, out, "rule:")
	assert.Contains(t, out, "picking:  picking (process)")
	assert.Contains(t, out, "assembly: Gearbox (assembly)")

	_, _, err = execute(t, "", "classify", "The weather is nice.")
	assert.ErrorIs(t, err, rule.ErrUnrecognizedStatement)
}

func TestTemplates(t *testing.T) {
	out, _, err := execute(t, "", "templates")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1+len(rule.Templates()))
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
	assert.Contains(t, lines[8], "joint-production")

	out, _, err = execute(t, "", "templates", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "EXPRESSION")
	assert.Contains(t, out, "http")
}

func TestWatch_RequiresPatterns(t *testing.T) {
	_, _, err := execute(t, "", "watch")
	assert.ErrorContains(t, err, "no input patterns")
}

func TestPublishResults(t *testing.T) {
	a := testApp()
	res, err := a.newGenerator(nil).Batch(context.Background(), []string{
		"The chair is made of wood.",
		"Lego is the input of lego assembly.",
	})
	require.NoError(t, err)

	pub := &fakePublisher{}
	require.NoError(t, a.publishResults(context.Background(), pub, res.Results()))

	require.Len(t, pub.messages, 2)
	assert.Equal(t, []string{"graph.ingest.entity", "graph.ingest.entity"}, pub.subjects)
	assert.Contains(t, string(pub.messages[0]), "mcskg.local.rules.rule.template4.")
}

func TestProcessFiles(t *testing.T) {
	a := testApp()
	path := filepath.Join(t.TempDir(), "plant.mcsk")
	require.NoError(t, os.WriteFile(path, []byte("After drilling you should deburr.\nnonsense\n"), 0644))

	var out bytes.Buffer
	pub := &fakePublisher{}
	a.processFiles(context.Background(), &out, a.newGenerator(nil), sinks{pub: pub},
		outputOptions{format: outputSPARQL}, []string{path})

	assert.Equal(t, 1, strings.Count(out.String(), "INSERT {"))
	assert.Len(t, pub.messages, 1)
}

type fakeSaver struct {
	saved map[string]int
}

func (f *fakeSaver) Save(_ context.Context, statement string, cr rule.ConcreteRule, query string) (*storage.StoredRule, bool, error) {
	if f.saved == nil {
		f.saved = make(map[string]int)
	}
	id := cr.UUID().String()
	f.saved[id]++
	return &storage.StoredRule{ID: id, TemplateID: cr.ID, Expression: cr.Expression, Statement: statement, Query: query}, f.saved[id] == 1, nil
}

func TestDeliver_Store(t *testing.T) {
	a := testApp()
	res, err := a.newGenerator(nil).Batch(context.Background(), []string{
		"The chair is made of wood.",
		"The chair is made of wood.",
		"After drilling you should deburr.",
	})
	require.NoError(t, err)

	saver := &fakeSaver{}
	pub := &fakePublisher{}
	require.NoError(t, a.deliver(context.Background(), sinks{pub: pub, store: saver}, res.Results()))

	assert.Len(t, saver.saved, 2)
	assert.Len(t, pub.messages, 3)

	require.NoError(t, a.deliver(context.Background(), sinks{}, res.Results()))
}

// deliveryMetrics records the delivery stages; the embedded Metrics is nil.
type deliveryMetrics struct {
	metrics.Metrics
	stages   []string
	failures []string
}

func (m *deliveryMetrics) ObserveStageDuration(stage string, _ float64) {
	m.stages = append(m.stages, stage)
}

func (m *deliveryMetrics) IncrementFailures(stage, reason string) {
	m.failures = append(m.failures, stage+"/"+reason)
}

func TestDeliver_Metrics(t *testing.T) {
	a := testApp()
	res, err := a.newGenerator(nil).Batch(context.Background(), []string{"The chair is made of wood."})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		rec := &deliveryMetrics{}
		dest := sinks{pub: &fakePublisher{}, store: &fakeSaver{}, metrics: rec}
		require.NoError(t, a.deliver(context.Background(), dest, res.Results()))
		assert.Equal(t, []string{metrics.StagePublish, metrics.StageStore}, rec.stages)
		assert.Empty(t, rec.failures)
	})

	t.Run("publish failure", func(t *testing.T) {
		rec := &deliveryMetrics{}
		saver := &fakeSaver{}
		dest := sinks{pub: &fakePublisher{err: errors.New("nats: connection closed")}, store: saver, metrics: rec}
		err := a.deliver(context.Background(), dest, res.Results())
		require.Error(t, err)
		assert.Equal(t, []string{metrics.StagePublish + "/other"}, rec.failures)
		assert.Empty(t, saver.saved)
	})
}

func storedRules(t *testing.T, statements ...string) []*storage.StoredRule {
	t.Helper()
	var out []*storage.StoredRule
	for _, s := range statements {
		tmpl, err := rule.Classify(s)
		require.NoError(t, err)
		cr, err := rule.Specialize(tmpl, s)
		require.NoError(t, err)
		out = append(out, &storage.StoredRule{
			ID:         cr.UUID().String(),
			TemplateID: cr.ID,
			Expression: cr.Expression,
			Statement:  s,
			UpdatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func TestWriteStoredRules(t *testing.T) {
	rules := storedRules(t, "The chair is made of wood.", "Gearbox includes picking and fixing.")

	var text bytes.Buffer
	require.NoError(t, writeStoredRules(&text, outputText, rules))
	lines := strings.Split(strings.TrimSpace(text.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], rules[0].ID)
	assert.Contains(t, lines[1], "2026-03-01T10:00:00Z")
	assert.Contains(t, lines[2], "partOf(y, x)")

	var js bytes.Buffer
	require.NoError(t, writeStoredRules(&js, outputJSON, rules))
	var decoded []storage.StoredRule
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Len(t, decoded, 2)

	var one bytes.Buffer
	require.NoError(t, writeStoredRules(&one, outputJSON, rules[:1]))
	var single storage.StoredRule
	require.NoError(t, json.Unmarshal(one.Bytes(), &single))
	assert.Equal(t, rules[0].ID, single.ID)

	assert.Error(t, writeStoredRules(&one, "turtle", rules))
}

func TestExportStoredRules(t *testing.T) {
	a := testApp()
	rules := storedRules(t, "The chair is made of wood.", "Lego is the input of lego assembly.")
	rules = append(rules, &storage.StoredRule{ID: "broken", TemplateID: 4, Expression: "chair(x)"})

	var out bytes.Buffer
	require.NoError(t, a.exportStoredRules(&out, export.FormatNTriples, export.ProfileMinimal, rules))

	assert.Contains(t, out.String(), "The chair is made of wood.")
	assert.Contains(t, out.String(), "lego_assembly")
	assert.NotContains(t, out.String(), "broken")
}
