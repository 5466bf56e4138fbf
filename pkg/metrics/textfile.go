package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes every metric on the global registry to path in the
// text exposition format, for a node_exporter textfile collector.
func WriteTextfile(path string) error {
	return global().WriteTextfile(path)
}

// WriteTextfile writes the manager's metrics to path.
func (m *Manager) WriteTextfile(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
