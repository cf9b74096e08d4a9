package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DataDirName holds local, uncommitted settings
const DataDirName = ".dodo-deploy"

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:        projectRoot,
		DataDir:            filepath.Join(projectRoot, DataDirName),
		NetworksDir:        resolvePath(projectRoot, v.GetString("networks_dir")),
		DeploymentsDir:     resolvePath(projectRoot, v.GetString("deployments_dir")),
		ArtifactsDir:       resolvePath(projectRoot, v.GetString("artifacts_dir")),
		NetworkName:        v.GetString("network"),
		Debug:              v.GetBool("debug"),
		NonInteractive:     v.GetBool("non_interactive"),
		JSON:               v.GetBool("json"),
		Timeout:            v.GetDuration("timeout"),
		TxTimeout:          v.GetDuration("tx_timeout"),
		VerifyPollInterval: v.GetDuration("verify_poll_interval"),
		VerifyMaxAttempts:  v.GetInt("verify_max_attempts"),
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	if cfg.TxTimeout < 0 {
		return nil, fmt.Errorf("tx_timeout must not be negative, got %s", cfg.TxTimeout)
	}

	return cfg, nil
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// FindProjectRoot walks up from the current directory to the first one
// containing a networks directory.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, "networks")); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a deployment project (networks/ directory not found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DataDirName))

	v.SetEnvPrefix("DODO_DEPLOY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("timeout", "5m")
	v.SetDefault("tx_timeout", "10m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("json", false)
	v.SetDefault("project_root", projectRoot)
	v.SetDefault("networks_dir", "networks")
	v.SetDefault("deployments_dir", "deployments")
	v.SetDefault("artifacts_dir", "artifacts")
	v.SetDefault("verify_poll_interval", "5s")
	v.SetDefault("verify_max_attempts", 10)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}
