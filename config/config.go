// Package config provides configuration loading and management for mcskg.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/mcskg/export"
	"github.com/c360studio/mcskg/graph"
	"github.com/c360studio/mcskg/sparql"
	"github.com/c360studio/mcskg/storage"
	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

// Config represents the complete mcskg configuration
type Config struct {
	Ontology OntologyConfig `yaml:"ontology"`
	Query    QueryConfig    `yaml:"query"`
	Export   ExportConfig   `yaml:"export"`
	NATS     NATSConfig     `yaml:"nats"`
	Input    InputConfig    `yaml:"input"`
}

// OntologyConfig configures the IRIs written into generated queries
type OntologyConfig struct {
	// Namespace is the base IRI for entity classes and minted nodes
	Namespace string `yaml:"namespace"`
	// Predicates overrides predicate IRIs by relation kind (e.g. made_of)
	Predicates map[string]string `yaml:"predicates,omitempty"`
}

// QueryConfig configures SPARQL rendering
type QueryConfig struct {
	// FreshURI is the fresh node strategy: struuid or uuid
	FreshURI string `yaml:"fresh_uri"`
	// OmitPrefixes drops the PREFIX header and writes rdf:type in full
	OmitPrefixes bool `yaml:"omit_prefixes"`
}

// ExportConfig configures RDF export
type ExportConfig struct {
	// Profile is the ontology alignment profile: minimal or bfo
	Profile string `yaml:"profile"`
}

// NATSConfig configures publishing rule entities to the graph
type NATSConfig struct {
	// Enabled turns publishing on
	Enabled bool `yaml:"enabled"`
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// Subject is the graph ingest subject
	Subject string `yaml:"subject"`
	// Store keeps generated rules in a JetStream KV bucket
	Store bool `yaml:"store"`
	// Bucket is the KV bucket for stored rules
	Bucket string `yaml:"bucket"`
}

// InputConfig configures statement sources
type InputConfig struct {
	// Patterns are statement file globs used when none are given on the command line
	Patterns []string `yaml:"patterns,omitempty"`
	// DebounceDelay is how long watch mode collects changes (e.g. "500ms")
	DebounceDelay string `yaml:"debounce_delay"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ontology: OntologyConfig{
			Namespace: mcskg.Namespace,
		},
		Query: QueryConfig{
			FreshURI: string(sparql.FreshSTRUUID),
		},
		Export: ExportConfig{
			Profile: string(export.ProfileMinimal),
		},
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: graph.GraphIngestSubject,
			Bucket:  storage.BucketRules,
		},
		Input: InputConfig{
			DebounceDelay: "500ms",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Ontology.Namespace == "" {
		return fmt.Errorf("ontology.namespace is required")
	}
	known := make(map[mcskg.Relation]bool)
	for _, r := range mcskg.Relations() {
		known[r] = true
	}
	for rel, iri := range c.Ontology.Predicates {
		if !known[mcskg.Relation(rel)] {
			return fmt.Errorf("ontology.predicates: unknown relation %q", rel)
		}
		if iri == "" {
			return fmt.Errorf("ontology.predicates.%s: IRI is required", rel)
		}
	}
	if _, err := sparql.ParseFreshURIMode(c.Query.FreshURI); err != nil {
		return fmt.Errorf("query.fresh_uri: %w", err)
	}
	if _, err := export.ParseProfile(c.Export.Profile); err != nil {
		return fmt.Errorf("export.profile: %w", err)
	}
	if (c.NATS.Enabled || c.NATS.Store) && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when publishing or storing rules")
	}
	if c.NATS.Enabled && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when publishing is enabled")
	}
	if c.NATS.Store && c.NATS.Bucket == "" {
		return fmt.Errorf("nats.bucket is required when storing rules")
	}
	if c.Input.DebounceDelay != "" {
		if d, err := time.ParseDuration(c.Input.DebounceDelay); err != nil || d <= 0 {
			return fmt.Errorf("input.debounce_delay must be a positive duration, got %q", c.Input.DebounceDelay)
		}
	}
	return nil
}

// TranslatorOptions returns the query translator options for this config.
// Call Validate first.
func (c *Config) TranslatorOptions() []sparql.Option {
	opts := []sparql.Option{
		sparql.WithNamespace(c.Ontology.Namespace),
		sparql.WithFreshURI(sparql.FreshURIMode(c.Query.FreshURI)),
		sparql.WithPrefixes(!c.Query.OmitPrefixes),
	}
	for rel, iri := range c.Ontology.Predicates {
		opts = append(opts, sparql.WithPredicate(mcskg.Relation(rel), iri))
	}
	return opts
}

// NewExporter returns an RDF exporter using the configured namespace and
// predicate overrides, so exported alignments name the predicates that
// generated queries use.
func (c *Config) NewExporter(profile export.Profile) *export.RuleExporter {
	e := export.NewRuleExporter(profile)
	e.SetNamespace(c.Ontology.Namespace)
	for rel, iri := range c.Ontology.Predicates {
		e.SetPredicate(mcskg.Relation(rel), iri)
	}
	return e
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Ontology
	if other.Ontology.Namespace != "" {
		c.Ontology.Namespace = other.Ontology.Namespace
	}
	if len(other.Ontology.Predicates) > 0 {
		if c.Ontology.Predicates == nil {
			c.Ontology.Predicates = make(map[string]string, len(other.Ontology.Predicates))
		}
		for rel, iri := range other.Ontology.Predicates {
			c.Ontology.Predicates[rel] = iri
		}
	}

	// Query
	if other.Query.FreshURI != "" {
		c.Query.FreshURI = other.Query.FreshURI
	}
	if other.Query.OmitPrefixes {
		c.Query.OmitPrefixes = true
	}

	// Export
	if other.Export.Profile != "" {
		c.Export.Profile = other.Export.Profile
	}

	// NATS
	if other.NATS.Enabled {
		c.NATS.Enabled = true
	}
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
	if other.NATS.Store {
		c.NATS.Store = true
	}
	if other.NATS.Bucket != "" {
		c.NATS.Bucket = other.NATS.Bucket
	}

	// Input
	if len(other.Input.Patterns) > 0 {
		c.Input.Patterns = other.Input.Patterns
	}
	if other.Input.DebounceDelay != "" {
		c.Input.DebounceDelay = other.Input.DebounceDelay
	}
}
