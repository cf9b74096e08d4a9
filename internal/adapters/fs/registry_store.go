package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
)

// RegistryStoreAdapter keeps one registry file and one last-run report per
// network under the deployments directory:
//
//	deployments/<network>.json      registry snapshot
//	deployments/<network>.run.json  last run report
type RegistryStoreAdapter struct {
	dir string
}

// NewRegistryStoreAdapter creates a new RegistryStoreAdapter
func NewRegistryStoreAdapter(cfg *config.RuntimeConfig) *RegistryStoreAdapter {
	return &RegistryStoreAdapter{dir: cfg.DeploymentsDir}
}

// SnapshotPath returns the registry file for network
func (s *RegistryStoreAdapter) SnapshotPath(network string) string {
	return filepath.Join(s.dir, network+".json")
}

// ReportPath returns the last-run report file for network
func (s *RegistryStoreAdapter) ReportPath(network string) string {
	return filepath.Join(s.dir, network+".run.json")
}

// LoadSnapshot reads the registry file. Returns an empty snapshot if the file does not exist.
func (s *RegistryStoreAdapter) LoadSnapshot(_ context.Context, network string) (*domain.RegistrySnapshot, error) {
	data, err := os.ReadFile(s.SnapshotPath(network))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewRegistrySnapshot(network, 0), nil
		}
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var snapshot domain.RegistrySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", s.SnapshotPath(network), err)
	}
	if snapshot.Network == "" {
		snapshot.Network = network
	}
	if snapshot.Network != network {
		return nil, fmt.Errorf("registry file %s belongs to network %q", s.SnapshotPath(network), snapshot.Network)
	}
	if snapshot.Addresses == nil {
		snapshot.Addresses = make(map[domain.ContractName]common.Address)
	}
	for name, addr := range snapshot.Addresses {
		if addr == (common.Address{}) {
			return nil, fmt.Errorf("registry file %s: %s has a zero address: %w", s.SnapshotPath(network), name, domain.ErrInvalidAddress)
		}
	}

	return &snapshot, nil
}

// SaveSnapshot writes the registry file, creating the directory if needed.
func (s *RegistryStoreAdapter) SaveSnapshot(_ context.Context, snapshot *domain.RegistrySnapshot) error {
	return s.writeJSON(s.SnapshotPath(snapshot.Network), snapshot)
}

// SaveReport writes the last-run report
func (s *RegistryStoreAdapter) SaveReport(_ context.Context, report *domain.RunReport) error {
	return s.writeJSON(s.ReportPath(report.Network), report)
}

// LoadReport reads the last-run report, or domain.ErrNotFound
func (s *RegistryStoreAdapter) LoadReport(_ context.Context, network string) (*domain.RunReport, error) {
	data, err := os.ReadFile(s.ReportPath(network))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no run report for %s: %w", network, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}

	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}
	return &report, nil
}

// writeJSON replaces path atomically so an interrupted write never leaves a
// truncated registry behind.
func (s *RegistryStoreAdapter) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create deployments directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Ensure RegistryStoreAdapter implements RegistryStore
var _ usecase.RegistryStore = (*RegistryStoreAdapter)(nil)
