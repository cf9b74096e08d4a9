package contracts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// artifactEntry is one indexed artifact file
type artifactEntry struct {
	name       string
	sourceName string
	path       string
}

func (e *artifactEntry) fqn() string { return e.sourceName + ":" + e.name }

// ArtifactRepository indexes Hardhat and Foundry artifacts under the
// configured artifacts directory. The directory is walked once, on first use.
type ArtifactRepository struct {
	dir string
	log *slog.Logger

	once     sync.Once
	indexErr error
	byFQN    map[string]*artifactEntry
	byName   map[string][]*artifactEntry

	mu     sync.Mutex
	loaded map[string]*domain.Artifact
}

// NewArtifactRepository creates a repository rooted at cfg.ArtifactsDir
func NewArtifactRepository(cfg *config.RuntimeConfig, log *slog.Logger) *ArtifactRepository {
	return &ArtifactRepository{
		dir:    cfg.ArtifactsDir,
		log:    log.With("component", "ArtifactRepository"),
		loaded: make(map[string]*domain.Artifact),
	}
}

// GetArtifact resolves ref, either a contract name or "path/File.sol:Name"
func (r *ArtifactRepository) GetArtifact(ctx context.Context, ref string) (*domain.Artifact, error) {
	r.once.Do(func() { r.indexErr = r.index() })
	if r.indexErr != nil {
		return nil, r.indexErr
	}

	entry, err := r.lookup(ref)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if artifact, ok := r.loaded[entry.path]; ok {
		return artifact, nil
	}
	artifact, err := loadArtifact(entry)
	if err != nil {
		return nil, err
	}
	r.loaded[entry.path] = artifact
	return artifact, nil
}

func (r *ArtifactRepository) lookup(ref string) (*artifactEntry, error) {
	if strings.Contains(ref, ":") {
		if entry, ok := r.byFQN[ref]; ok {
			return entry, nil
		}
		return nil, fmt.Errorf("artifact %s: %w", ref, domain.ErrNotFound)
	}

	matches := r.byName[ref]
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("artifact %s: %w", ref, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.fqn())
		}
		return nil, &domain.AmbiguousArtifactError{Ref: ref, Matches: names}
	}
}

func (r *ArtifactRepository) index() error {
	if _, err := os.Stat(r.dir); err != nil {
		return fmt.Errorf("artifacts directory %s: %w", r.dir, err)
	}

	r.byFQN = make(map[string]*artifactEntry)
	r.byName = make(map[string][]*artifactEntry)

	err := filepath.Walk(r.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}

		entry, ok := probeArtifact(path)
		if !ok {
			return nil
		}
		if _, exists := r.byFQN[entry.fqn()]; exists {
			return nil
		}
		r.byFQN[entry.fqn()] = entry
		r.byName[entry.name] = append(r.byName[entry.name], entry)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index artifacts: %w", err)
	}

	for _, entries := range r.byName {
		sort.Slice(entries, func(i, j int) bool { return entries[i].fqn() < entries[j].fqn() })
	}
	r.log.Debug("indexed artifacts", "dir", r.dir, "count", len(r.byFQN))
	return nil
}

// rawArtifact covers both artifact layouts. Hardhat stores bytecode as a hex
// string, Foundry as {"object": "0x..."}.
type rawArtifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
	Metadata     struct {
		Settings struct {
			CompilationTarget map[string]string `json:"compilationTarget"`
		} `json:"settings"`
	} `json:"metadata"`
}

func (a *rawArtifact) names() (name, source string) {
	if a.ContractName != "" && a.SourceName != "" {
		return a.ContractName, a.SourceName
	}
	for s, n := range a.Metadata.Settings.CompilationTarget {
		return n, s
	}
	return "", ""
}

func (a *rawArtifact) bytecode() (string, error) {
	if len(a.Bytecode) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(a.Bytecode, &s); err == nil {
		return s, nil
	}
	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(a.Bytecode, &obj); err != nil {
		return "", fmt.Errorf("unrecognized bytecode field: %w", err)
	}
	return obj.Object, nil
}

// probeArtifact reports whether path looks like a contract artifact.
// Unparseable files are skipped.
func probeArtifact(path string) (*artifactEntry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil || len(raw.ABI) == 0 {
		return nil, false
	}
	name, source := raw.names()
	if name == "" || source == "" {
		return nil, false
	}
	return &artifactEntry{name: name, sourceName: source, path: path}, true
}

func loadArtifact(entry *artifactEntry) (*domain.Artifact, error) {
	data, err := os.ReadFile(entry.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", entry.path, err)
	}
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", entry.path, err)
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", entry.fqn(), err)
	}

	code, err := raw.bytecode()
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", entry.fqn(), err)
	}
	var bytecode []byte
	if code != "" && code != "0x" {
		if strings.Contains(code, "__") {
			return nil, fmt.Errorf("artifact %s has unlinked library references", entry.fqn())
		}
		if !strings.HasPrefix(code, "0x") {
			code = "0x" + code
		}
		bytecode, err = hexutil.Decode(code)
		if err != nil {
			return nil, fmt.Errorf("invalid bytecode in %s: %w", entry.fqn(), err)
		}
	}

	return &domain.Artifact{
		Name:          entry.name,
		SourceName:    entry.sourceName,
		Path:          entry.path,
		ABI:           parsed,
		Bytecode:      bytecode,
		BuildInfoPath: buildInfoPath(entry.path),
	}, nil
}

// buildInfoPath follows the Hardhat debug file next to the artifact. The
// debug file stores the build-info location relative to itself.
func buildInfoPath(artifactPath string) string {
	dbgPath := strings.TrimSuffix(artifactPath, ".json") + ".dbg.json"
	data, err := os.ReadFile(dbgPath)
	if err != nil {
		return ""
	}
	var dbg struct {
		BuildInfo string `json:"buildInfo"`
	}
	if err := json.Unmarshal(data, &dbg); err != nil || dbg.BuildInfo == "" {
		return ""
	}
	return filepath.Clean(filepath.Join(filepath.Dir(dbgPath), dbg.BuildInfo))
}

var _ usecase.ArtifactRepository = (*ArtifactRepository)(nil)
