package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/mcskg/export"
	"github.com/c360studio/mcskg/rule"
	"github.com/c360studio/mcskg/sparql"
	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ontology.Namespace != mcskg.Namespace {
		t.Errorf("expected namespace %s, got %s", mcskg.Namespace, cfg.Ontology.Namespace)
	}
	if cfg.Query.FreshURI != "struuid" {
		t.Errorf("expected struuid fresh URIs, got %s", cfg.Query.FreshURI)
	}
	if cfg.NATS.Enabled {
		t.Error("expected publishing disabled by default")
	}
	if cfg.NATS.Bucket != "MCSKG_RULES" {
		t.Errorf("expected MCSKG_RULES bucket, got %s", cfg.NATS.Bucket)
	}
	if cfg.NATS.Subject != "graph.ingest.entity" {
		t.Errorf("expected graph.ingest.entity subject, got %s", cfg.NATS.Subject)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing namespace",
			modify:  func(c *Config) { c.Ontology.Namespace = "" },
			wantErr: true,
		},
		{
			name:    "unknown fresh uri mode",
			modify:  func(c *Config) { c.Query.FreshURI = "counter" },
			wantErr: true,
		},
		{
			name:    "unknown relation override",
			modify:  func(c *Config) { c.Ontology.Predicates = map[string]string{"touches": "urn:x"} },
			wantErr: true,
		},
		{
			name:    "empty predicate override",
			modify:  func(c *Config) { c.Ontology.Predicates = map[string]string{"made_of": ""} },
			wantErr: true,
		},
		{
			name:    "valid predicate override",
			modify:  func(c *Config) { c.Ontology.Predicates = map[string]string{"made_of": "urn:madeOf"} },
			wantErr: false,
		},
		{
			name:    "bad debounce",
			modify:  func(c *Config) { c.Input.DebounceDelay = "later" },
			wantErr: true,
		},
		{
			name: "storing without bucket",
			modify: func(c *Config) {
				c.NATS.Store = true
				c.NATS.Bucket = ""
			},
			wantErr: true,
		},
		{
			name: "storing without url",
			modify: func(c *Config) {
				c.NATS.Store = true
				c.NATS.URL = ""
			},
			wantErr: true,
		},
		{
			name:    "unknown export profile",
			modify:  func(c *Config) { c.Export.Profile = "cco" },
			wantErr: true,
		},
		{
			name: "publishing without subject",
			modify: func(c *Config) {
				c.NATS.Enabled = true
				c.NATS.Subject = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
ontology:
  namespace: "http://plant.example/"
  predicates:
    made_of: "http://plant.example/madeOf"
query:
  fresh_uri: uuid
nats:
  enabled: true
input:
  patterns: ["statements/**/*.mcsk"]
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Ontology.Namespace != "http://plant.example/" {
		t.Errorf("expected namespace http://plant.example/, got %s", cfg.Ontology.Namespace)
	}
	if cfg.Ontology.Predicates["made_of"] != "http://plant.example/madeOf" {
		t.Errorf("expected made_of override, got %v", cfg.Ontology.Predicates)
	}
	if cfg.Query.FreshURI != "uuid" {
		t.Errorf("expected uuid, got %s", cfg.Query.FreshURI)
	}
	if !cfg.NATS.Enabled {
		t.Error("expected NATS enabled")
	}
	if len(cfg.Input.Patterns) != 1 {
		t.Errorf("expected 1 pattern, got %v", cfg.Input.Patterns)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("query: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Query.FreshURI = "uuid"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Query.FreshURI != "uuid" {
		t.Errorf("expected uuid after reload, got %s", loaded.Query.FreshURI)
	}
	if loaded.Ontology.Namespace != mcskg.Namespace {
		t.Errorf("namespace lost on save: %s", loaded.Ontology.Namespace)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	base.Ontology.Predicates = map[string]string{"part_of": "urn:partOf"}

	base.Merge(&Config{
		Ontology: OntologyConfig{Predicates: map[string]string{"made_of": "urn:madeOf"}},
		Query:    QueryConfig{OmitPrefixes: true},
		NATS:     NATSConfig{Subject: "plant.ingest"},
	})

	if base.Ontology.Namespace != mcskg.Namespace {
		t.Error("empty namespace should not override")
	}
	if len(base.Ontology.Predicates) != 2 {
		t.Errorf("predicate overrides should accumulate, got %v", base.Ontology.Predicates)
	}
	if !base.Query.OmitPrefixes {
		t.Error("expected OmitPrefixes to merge")
	}
	if base.Query.FreshURI != "struuid" {
		t.Error("empty fresh_uri should not override")
	}
	if base.NATS.Subject != "plant.ingest" {
		t.Errorf("expected subject plant.ingest, got %s", base.NATS.Subject)
	}

	base.Merge(nil)
}

func TestTranslatorOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ontology.Namespace = "urn:plant:"
	cfg.Ontology.Predicates = map[string]string{"made_of": "urn:madeOf"}
	cfg.Query.OmitPrefixes = true

	tr := sparql.NewTranslator(cfg.TranslatorOptions()...)
	if got := tr.Predicate(mcskg.RelationMadeOf); got != "urn:madeOf" {
		t.Errorf("made_of predicate = %s", got)
	}

	tmpl, _ := rule.Lookup(rule.TemplateProductMaterial)
	cr, err := rule.Specialize(tmpl, "The chair is made of wood.")
	if err != nil {
		t.Fatal(err)
	}
	query, err := tr.Translate(cr)
	if err != nil {
		t.Fatal(err)
	}
	if want := "<urn:plant:chair>"; !strings.Contains(query, want) {
		t.Errorf("query missing %s:\n%s", want, query)
	}
	if strings.Contains(query, "PREFIX") {
		t.Errorf("query should omit prefixes:\n%s", query)
	}
}

func TestNewExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ontology.Namespace = "urn:plant:"
	cfg.Ontology.Predicates = map[string]string{"part_of": "urn:partOf"}

	tmpl, _ := rule.Lookup(rule.TemplateAssemblySteps)
	cr, err := rule.Specialize(tmpl, "Gearbox includes picking and fixing.")
	if err != nil {
		t.Fatal(err)
	}
	exporter := cfg.NewExporter(export.ProfileBFO)
	if err := exporter.Add("", cr, ""); err != nil {
		t.Fatal(err)
	}

	var aligned, class bool
	for _, tr := range exporter.Triples() {
		if tr.Subject == "urn:partOf" && tr.Predicate == mcskg.RDFSSubPropertyOf {
			aligned = true
		}
		if tr.Subject == "urn:plant:Gearbox" {
			class = true
		}
	}
	if !aligned {
		t.Error("configured part_of predicate not aligned with BFO")
	}
	if !class {
		t.Error("classes should use the configured namespace")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderLayering(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "plant", "line1")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
ontology:
  namespace: "urn:user:"
query:
  fresh_uri: uuid
`)
	writeFile(t, filepath.Join(project, ProjectConfigFile), `
ontology:
  namespace: "urn:project:"
export:
  profile: bfo
`)

	l := &Loader{logger: NewLoader(nil).logger, homeDir: home, workDir: work}
	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Ontology.Namespace != "urn:project:" {
		t.Errorf("project config should override user config, got %s", cfg.Ontology.Namespace)
	}
	if cfg.Query.FreshURI != "uuid" {
		t.Errorf("user config value should survive, got %s", cfg.Query.FreshURI)
	}
	if cfg.Export.Profile != "bfo" {
		t.Errorf("expected bfo profile, got %s", cfg.Export.Profile)
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	writeFile(t, explicit, "ontology:\n  namespace: \"urn:explicit:\"\n")
	cfg, err = l.Load(explicit)
	if err != nil {
		t.Fatalf("Load(explicit) error = %v", err)
	}
	if cfg.Ontology.Namespace != "urn:explicit:" {
		t.Errorf("explicit config should win, got %s", cfg.Ontology.Namespace)
	}
}

func TestLoaderDefaultsAndErrors(t *testing.T) {
	l := &Loader{logger: NewLoader(nil).logger, homeDir: t.TempDir(), workDir: t.TempDir()}

	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ontology.Namespace != mcskg.Namespace {
		t.Errorf("expected default namespace, got %s", cfg.Ontology.Namespace)
	}

	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	writeFile(t, invalid, "query:\n  fresh_uri: counter\n")
	if _, err := l.Load(invalid); err == nil {
		t.Error("expected validation error")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := &Loader{logger: NewLoader(nil).logger, homeDir: home}

	path, created, err := l.EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if !created {
		t.Error("expected the config to be created")
	}
	if want := filepath.Join(home, UserConfigDir, UserConfigFile); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("created config unreadable: %v", err)
	}
	if cfg.Query.FreshURI != "struuid" {
		t.Errorf("expected defaults, got %s", cfg.Query.FreshURI)
	}

	if _, created, err := l.EnsureUserConfig(); err != nil || created {
		t.Errorf("second EnsureUserConfig() = created %v, error %v", created, err)
	}
}
