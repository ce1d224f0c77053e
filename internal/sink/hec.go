package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
)

// DefaultHECSourceType tags sign-in events for the collector.
const DefaultHECSourceType = "azure:signinlogs"

type HECConfig struct {
	URL        string        `mapstructure:"url" yaml:"url"`
	Token      string        `mapstructure:"token" yaml:"token"`
	BatchSize  int           `mapstructure:"batch_size" yaml:"batch_size"`
	SourceType string        `mapstructure:"sourcetype" yaml:"sourcetype"`
	Index      string        `mapstructure:"index" yaml:"index"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// HECEvent is the collector envelope for one document.
type HECEvent struct {
	Time       float64       `json:"time"`
	Event      *signin.Event `json:"event"`
	SourceType string        `json:"sourcetype"`
	Index      string        `json:"index,omitempty"`
}

// HECSink posts events in batches to an HTTP Event Collector.
type HECSink struct {
	cfg        HECConfig
	HTTPClient *http.Client
}

func NewHECSink(cfg HECConfig) *HECSink {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.SourceType == "" {
		cfg.SourceType = DefaultHECSourceType
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &HECSink{
		cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (s *HECSink) Name() string { return NameHEC }

func (s *HECSink) Write(ctx context.Context, events []signin.Event) (int, error) {
	sent := 0
	batch := make([]HECEvent, 0, s.cfg.BatchSize)

	for i := range events {
		ts, err := events[i].Time()
		if err != nil {
			return sent, err
		}
		batch = append(batch, HECEvent{
			Time:       float64(ts.Unix()) + float64(ts.Nanosecond())/1e9,
			Event:      &events[i],
			SourceType: s.cfg.SourceType,
			Index:      s.cfg.Index,
		})

		if len(batch) >= s.cfg.BatchSize || i == len(events)-1 {
			if err := s.sendBatch(ctx, batch); err != nil {
				return sent, err
			}
			sent += len(batch)
			batch = batch[:0]
		}
	}
	return sent, nil
}

// sendBatch sends a batch of events to HEC
func (s *HECSink) sendBatch(ctx context.Context, events []HECEvent) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)

	for _, event := range events {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL+"/services/collector/event", &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Splunk "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HEC returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *HECSink) Close() error {
	s.HTTPClient.CloseIdleConnections()
	return nil
}
