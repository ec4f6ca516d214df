// Package storage keeps generated concrete rules in a NATS KV bucket keyed by
// rule UUID, so repeated generation of the same statement updates one entry.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/mcskg/rule"
)

// BucketRules is the default KV bucket for concrete rules.
const BucketRules = "MCSKG_RULES"

// StoredRule is a concrete rule with its provenance.
type StoredRule struct {
	ID         string    `json:"id"`
	TemplateID int       `json:"template_id"`
	Expression string    `json:"expression"`
	Statement  string    `json:"statement,omitempty"`
	Query      string    `json:"query,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ConcreteRule returns the stored rule without its provenance.
func (r *StoredRule) ConcreteRule() rule.ConcreteRule {
	return rule.ConcreteRule{ID: r.TemplateID, Expression: r.Expression}
}

// bucket is the subset of KV operations the store needs.
type bucket interface {
	get(ctx context.Context, key string) ([]byte, error)
	put(ctx context.Context, key string, value []byte) error
	keys(ctx context.Context) ([]string, error)
	delete(ctx context.Context, key string) error
}

type jetstreamBucket struct {
	kv jetstream.KeyValue
}

func (b jetstreamBucket) get(ctx context.Context, key string) ([]byte, error) {
	entry, err := b.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry.Value(), nil
}

func (b jetstreamBucket) put(ctx context.Context, key string, value []byte) error {
	_, err := b.kv.Put(ctx, key, value)
	return err
}

func (b jetstreamBucket) keys(ctx context.Context) ([]string, error) {
	keys, err := b.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	return keys, err
}

func (b jetstreamBucket) delete(ctx context.Context, key string) error {
	return b.kv.Delete(ctx, key)
}

// RuleStore provides rule storage operations backed by NATS KV.
type RuleStore struct {
	rules bucket
	now   func() time.Time
}

// NewRuleStore opens the named KV bucket, creating it if it doesn't exist.
func NewRuleStore(ctx context.Context, js jetstream.JetStream, name string) (*RuleStore, error) {
	if name == "" {
		name = BucketRules
	}
	kv, err := getOrCreateBucket(ctx, js, name)
	if err != nil {
		return nil, fmt.Errorf("create rules bucket: %w", err)
	}
	return newRuleStore(jetstreamBucket{kv: kv}), nil
}

func newRuleStore(b bucket) *RuleStore {
	return &RuleStore{rules: b, now: time.Now}
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("mcskg %s storage", strings.ToLower(name)),
		History:     5, // Keep last 5 revisions
	})
}

// Save stores a rule under its UUID. An existing entry keeps its creation
// time and gets the new statement and query. The returned bool reports
// whether the rule was new.
func (s *RuleStore) Save(ctx context.Context, statement string, cr rule.ConcreteRule, query string) (*StoredRule, bool, error) {
	id := cr.UUID().String()
	now := s.now().UTC()

	stored, err := s.Get(ctx, id)
	created := errors.Is(err, ErrNotFound)
	if err != nil && !created {
		return nil, false, err
	}
	if created {
		stored = &StoredRule{
			ID:         id,
			TemplateID: cr.ID,
			Expression: cr.Expression,
			CreatedAt:  now,
		}
	}
	stored.Statement = statement
	stored.Query = query
	stored.UpdatedAt = now

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, false, fmt.Errorf("marshal rule: %w", err)
	}
	if err := s.rules.put(ctx, id, data); err != nil {
		return nil, false, fmt.Errorf("store rule: %w", err)
	}
	return stored, created, nil
}

// Get retrieves a rule by UUID.
func (s *RuleStore) Get(ctx context.Context, id string) (*StoredRule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid rule ID %q: %w", id, err)
	}

	data, err := s.rules.get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get rule: %w", err)
	}

	var r StoredRule
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal rule: %w", err)
	}
	return &r, nil
}

// List returns all stored rules ordered by template and expression.
func (s *RuleStore) List(ctx context.Context) ([]*StoredRule, error) {
	keys, err := s.rules.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rule keys: %w", err)
	}

	rules := make([]*StoredRule, 0, len(keys))
	for _, key := range keys {
		r, err := s.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		rules = append(rules, r)
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].TemplateID != rules[j].TemplateID {
			return rules[i].TemplateID < rules[j].TemplateID
		}
		return rules[i].Expression < rules[j].Expression
	})
	return rules, nil
}

// Delete removes a rule by UUID.
func (s *RuleStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.rules.delete(ctx, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}
