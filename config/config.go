// Package config provides configuration loading and management for crosswalk.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/crosswalk/export"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the complete crosswalk configuration
type Config struct {
	// BaseURI prefixes generated and skolemized URIs.
	BaseURI    string           `yaml:"base_uri"`
	Output     OutputConfig     `yaml:"output"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Framing    FramingConfig    `yaml:"framing"`
	NATS       NATSConfig       `yaml:"nats"`
	Watch      WatchConfig      `yaml:"watch"`
}

// OutputConfig configures where and how documents are written
type OutputConfig struct {
	// Format is turtle, ntriples or jsonld
	Format string `yaml:"format"`
	// Path is the output file (empty = stdout)
	Path string `yaml:"path"`
}

// VocabularyConfig extends the built-in CodeMeta vocabulary
type VocabularyConfig struct {
	Predicates []PredicateConfig `yaml:"predicates"`
	Prefixes   map[string]string `yaml:"prefixes"`
}

// PredicateConfig registers one extra predicate
type PredicateConfig struct {
	Name     string `yaml:"name"`
	IRI      string `yaml:"iri"`
	Singular bool   `yaml:"singular"`
	Ordered  bool   `yaml:"ordered"`
	NoEmbed  bool   `yaml:"no_embed"`
	IRIRange bool   `yaml:"iri_range"`
}

// FramingConfig configures object framing
type FramingConfig struct {
	// Root is the default root resource id
	Root string `yaml:"root"`
	// NoEmbed lists extra predicate IRIs whose objects stay references
	NoEmbed []string `yaml:"no_embed"`
}

// NATSConfig configures the NATS connection used by the document store
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url"`
	// StoreDir holds embedded JetStream data
	StoreDir string `yaml:"store_dir"`
	// Bucket is the KV bucket name
	Bucket string `yaml:"bucket"`
	// Timeout bounds each store call
	Timeout time.Duration `yaml:"timeout"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Inputs are doublestar glob patterns
	Inputs []string `yaml:"inputs"`
	// Debounce is the quiet period before a rebuild
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURI: codemeta.UndefinedBase,
		Output: OutputConfig{
			Format: string(export.FormatJSONLD),
			Path:   "", // Stdout
		},
		NATS: NATSConfig{
			URL:      "", // Embedded
			StoreDir: filepath.Join(os.TempDir(), "crosswalk-jetstream"),
			Bucket:   "CROSSWALK_DOCUMENTS",
			Timeout:  10 * time.Second,
		},
		Watch: WatchConfig{
			Inputs:   []string{"**/codemeta.json", "**/*.jsonld"},
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := validateBaseURI(c.BaseURI); err != nil {
		return err
	}
	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %w", ErrInvalidConfig, err)
	}
	for i, p := range c.Vocabulary.Predicates {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: vocabulary.predicates[%d].name is required", ErrInvalidConfig, i)
		}
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch.debounce must not be negative", ErrInvalidConfig)
	}
	if c.NATS.Timeout <= 0 {
		return fmt.Errorf("%w: nats.timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// validateBaseURI accepts an absolute URI or the undefined: sentinel.
func validateBaseURI(base string) error {
	if base == "" {
		return fmt.Errorf("%w: base_uri is required", ErrInvalidConfig)
	}
	if strings.HasPrefix(base, codemeta.UndefinedBase) {
		return nil
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return fmt.Errorf("%w: base_uri %q is not an absolute URI", ErrInvalidConfig, base)
	}
	return nil
}

// BuildVocabulary returns the default vocabulary extended with the configured
// predicates and prefixes.
func (c *Config) BuildVocabulary() (*codemeta.Vocabulary, error) {
	v := codemeta.NewVocabulary()
	for prefix, ns := range c.Vocabulary.Prefixes {
		v.SetPrefix(prefix, ns)
	}
	for _, p := range c.Vocabulary.Predicates {
		var opts []codemeta.Option
		if p.IRI != "" {
			opts = append(opts, codemeta.WithIRI(v.ExpandIRI(p.IRI)))
		}
		if p.Singular {
			opts = append(opts, codemeta.WithSingular())
		}
		if p.Ordered {
			opts = append(opts, codemeta.WithOrdered())
		}
		if p.NoEmbed {
			opts = append(opts, codemeta.WithNoEmbed())
		}
		if p.IRIRange {
			opts = append(opts, codemeta.WithIRIRange())
		}
		if err := v.Register(p.Name, opts...); err != nil {
			return nil, fmt.Errorf("build vocabulary: %w", err)
		}
	}
	return v, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	layer, err := readFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Merge(layer)
	return config, nil
}

// readFile parses a YAML file without defaults, so unset fields stay zero and
// do not override lower layers on Merge.
func readFile(path string) (*Config, error) {
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
	// Ensure parent directory exists
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

	if other.BaseURI != "" {
		c.BaseURI = other.BaseURI
	}

	// Output
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}

	// Vocabulary accumulates across layers
	c.Vocabulary.Predicates = append(c.Vocabulary.Predicates, other.Vocabulary.Predicates...)
	if len(other.Vocabulary.Prefixes) > 0 && c.Vocabulary.Prefixes == nil {
		c.Vocabulary.Prefixes = make(map[string]string)
	}
	for prefix, ns := range other.Vocabulary.Prefixes {
		c.Vocabulary.Prefixes[prefix] = ns
	}

	// Framing
	if other.Framing.Root != "" {
		c.Framing.Root = other.Framing.Root
	}
	c.Framing.NoEmbed = append(c.Framing.NoEmbed, other.Framing.NoEmbed...)

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.StoreDir != "" {
		c.NATS.StoreDir = other.NATS.StoreDir
	}
	if other.NATS.Bucket != "" {
		c.NATS.Bucket = other.NATS.Bucket
	}
	if other.NATS.Timeout != 0 {
		c.NATS.Timeout = other.NATS.Timeout
	}

	// Watch
	if len(other.Watch.Inputs) > 0 {
		c.Watch.Inputs = other.Watch.Inputs
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}
