package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
)

// ModelConfig declares one searchable model and its index settings.
type ModelConfig struct {
	Name  string `yaml:"name"`
	Index string `yaml:"index"`

	DefaultFields []FieldConfig `yaml:"default_fields"`
	Searchable    []string      `yaml:"searchable"`
	// ModeFields lists, per match mode, the fields the index mapping covers.
	ModeFields map[string][]string `yaml:"mode_fields"`
	Match      string              `yaml:"match"`
	CatchAll   bool                `yaml:"catch_all"`

	Language         string `yaml:"language"`
	DisableWordBoost bool   `yaml:"disable_word_boost"`

	Suggest     []string `yaml:"suggest"`
	Conversions []string `yaml:"conversions"`

	MaxResultWindow int  `yaml:"max_result_window"`
	DeepPaging      bool `yaml:"deep_paging"`

	BatchSize int    `yaml:"batch_size"`
	Callbacks string `yaml:"callbacks"` // inline (default), async, queue, disabled
}

// FieldConfig is a field entry: either a scalar ("title^2") or a mapping ({name: title, mode: word_start}).
type FieldConfig struct {
	Name string `yaml:"name"`
	Mode string `yaml:"mode"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (f *FieldConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Name = node.Value
		return nil
	}
	type plain FieldConfig
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*f = FieldConfig(p)
	return nil
}

func (m *ModelConfig) applyDefaults() {
	if m.Index == "" {
		m.Index = defaultIndexName(m.Name)
	}
	if m.Callbacks == "" {
		m.Callbacks = string(index.CallbacksInline)
	}
}

// defaultIndexName derives "products" from "Product" and "order_items" from "OrderItem".
func defaultIndexName(model string) string {
	var b strings.Builder
	for i, r := range model {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String() + "s"
}

func (m ModelConfig) validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !index.Callbacks(m.Callbacks).IsValid() {
		return fmt.Errorf("model %s: callbacks must be inline, async, queue or disabled, got %q", m.Name, m.Callbacks)
	}
	if m.Match != "" && !field.Mode(m.Match).IsValid() {
		return fmt.Errorf("model %s: unknown match mode %q", m.Name, m.Match)
	}
	for _, f := range m.DefaultFields {
		if f.Name == "" {
			return fmt.Errorf("model %s: default field without name", m.Name)
		}
		if f.Mode != "" && !field.Mode(f.Mode).IsValid() {
			return fmt.Errorf("model %s: field %s: unknown mode %q", m.Name, f.Name, f.Mode)
		}
	}
	for mode := range m.ModeFields {
		if !field.Mode(mode).IsValid() {
			return fmt.Errorf("model %s: mode_fields: unknown mode %q", m.Name, mode)
		}
	}
	if _, err := index.New(m.Index, m.IndexOptions()); err != nil {
		return fmt.Errorf("model %s: %w", m.Name, err)
	}
	return nil
}

// IndexOptions converts the model settings to index options.
func (m ModelConfig) IndexOptions() index.Options {
	opts := index.Options{
		Class:            m.Name,
		Searchable:       m.Searchable,
		Match:            field.Mode(m.Match),
		CatchAll:         m.CatchAll,
		Language:         m.Language,
		DisableWordBoost: m.DisableWordBoost,
		Suggest:          m.Suggest,
		Conversions:      m.Conversions,
		MaxResultWindow:  m.MaxResultWindow,
		DeepPaging:       m.DeepPaging,
		BatchSize:        m.BatchSize,
		Callbacks:        index.Callbacks(m.Callbacks),
	}
	for _, f := range m.DefaultFields {
		opts.DefaultFields = append(opts.DefaultFields, field.Spec{Name: f.Name, Mode: field.Mode(f.Mode)})
	}
	if len(m.ModeFields) > 0 {
		opts.ModeFields = make(map[field.Mode][]string, len(m.ModeFields))
		for mode, fields := range m.ModeFields {
			opts.ModeFields[field.Mode(mode)] = fields
		}
	}
	return opts
}

// QueuedModels returns the names of models that index through the reindex queue.
func (c *Config) QueuedModels() []string {
	var out []string
	for _, m := range c.Models {
		if index.Callbacks(m.Callbacks) == index.CallbacksQueue {
			out = append(out, m.Name)
		}
	}
	return out
}
