// Package export writes simulation artefacts to disk: scenarios and price
// maps as YAML, analyses as JSON, and the seed bundle the game app loads.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/okian/castaway/internal/domain/model"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// WriteJSON writes v to path as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return write(path, buf.Bytes())
}

// WriteYAML writes v to path as YAML with two-space indentation.
func WriteYAML(path string, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return write(path, buf.Bytes())
}

// WriteText writes a rendered report.
func WriteText(path, text string) error {
	return write(path, []byte(text))
}

// WriteScenarioYAML writes a generated season.
func WriteScenarioYAML(path string, sc *model.Scenario) error {
	if len(sc.Episodes) == 0 {
		return ErrNoEpisodes
	}
	return WriteYAML(path, sc)
}

// WritePricesYAML writes a price map keyed by contestant id.
func WritePricesYAML(path string, prices model.PriceMap) error {
	return WriteYAML(path, map[string]int(prices))
}

// ReadScenarioYAML reads a season written by WriteScenarioYAML.
func ReadScenarioYAML(path string) (*model.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var sc model.Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &sc, nil
}

func write(path string, data []byte) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
