// Package sink delivers generated events to their destinations: the bulk
// NDJSON file, a search cluster's _bulk API, a HEC collector or NATS.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
)

// Sink names accepted in configuration.
const (
	NameFile          = "file"
	NameOpenSearch    = "opensearch"
	NameElasticsearch = "elasticsearch"
	NameHEC           = "hec"
	NameNATS          = "nats"
)

// DefaultIndex is the target index when none is configured.
const DefaultIndex = "azure_entra_signin_logs"

// Sink receives the full event collection.
type Sink interface {
	Name() string
	// Write delivers events and returns how many were accepted.
	Write(ctx context.Context, events []signin.Event) (int, error)
	Close() error
}

// Config holds settings for every sink type.
type Config struct {
	Enabled       []string            `mapstructure:"enabled" yaml:"enabled"`
	File          FileConfig          `mapstructure:"file" yaml:"file"`
	OpenSearch    OpenSearchConfig    `mapstructure:"opensearch" yaml:"opensearch"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	HEC           HECConfig           `mapstructure:"hec" yaml:"hec"`
	NATS          NATSConfig          `mapstructure:"nats" yaml:"nats"`
}

// Known reports whether name is a supported sink.
func Known(name string) bool {
	switch name {
	case NameFile, NameOpenSearch, NameElasticsearch, NameHEC, NameNATS:
		return true
	}
	return false
}

// Validate checks the enabled list and the settings the enabled sinks need.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Enabled))
	for _, name := range c.Enabled {
		if !Known(name) {
			return fmt.Errorf("unknown sink %q", name)
		}
		if seen[name] {
			return fmt.Errorf("sink %q listed twice", name)
		}
		seen[name] = true

		switch name {
		case NameFile:
			if c.File.Path == "" {
				return fmt.Errorf("file sink: path is required")
			}
		case NameOpenSearch:
			if c.OpenSearch.URL == "" {
				return fmt.Errorf("opensearch sink: url is required")
			}
		case NameElasticsearch:
			if c.Elasticsearch.URL == "" {
				return fmt.Errorf("elasticsearch sink: url is required")
			}
		case NameHEC:
			if c.HEC.URL == "" || c.HEC.Token == "" {
				return fmt.Errorf("hec sink: url and token are required")
			}
		case NameNATS:
			if c.NATS.URL == "" || c.NATS.Subject == "" {
				return fmt.Errorf("nats sink: url and subject are required")
			}
		}
	}
	return nil
}

// Build constructs the named sinks in order. On error, sinks already built
// are closed.
func Build(cfg Config, names []string) ([]Sink, error) {
	sinks := make([]Sink, 0, len(names))
	for _, name := range names {
		s, err := build(cfg, name)
		if err != nil {
			_ = CloseAll(sinks)
			return nil, fmt.Errorf("%s sink: %w", name, err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func build(cfg Config, name string) (Sink, error) {
	switch name {
	case NameFile:
		return NewFileSink(cfg.File), nil
	case NameOpenSearch:
		return NewOpenSearchSink(cfg.OpenSearch)
	case NameElasticsearch:
		return NewElasticsearchSink(cfg.Elasticsearch)
	case NameHEC:
		return NewHECSink(cfg.HEC), nil
	case NameNATS:
		return NewNATSSink(cfg.NATS)
	default:
		return nil, fmt.Errorf("unknown sink %q", name)
	}
}

// CloseAll closes every sink and joins the errors.
func CloseAll(sinks []Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// failures collects per-item errors reported by bulk indexer callbacks,
// which run on the indexer's worker goroutines.
type failures struct {
	mu      sync.Mutex
	count   int
	reasons []string
}

const maxReasons = 5

func (f *failures) add(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	if len(f.reasons) < maxReasons {
		f.reasons = append(f.reasons, reason)
	}
}

func (f *failures) err(total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.count == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d documents failed: %s", f.count, total, strings.Join(f.reasons, "; "))
}
