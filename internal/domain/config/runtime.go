package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot    string
	DataDir        string
	NetworksDir    string
	DeploymentsDir string
	ArtifactsDir   string

	// Context settings
	NetworkName string // empty if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool

	// Timeout bounds short commands; 0 disables it. Commands that broadcast
	// are never bounded as a whole.
	Timeout time.Duration

	// TxTimeout bounds the wait for one transaction to be mined; 0 leaves it
	// to the chain client.
	TxTimeout time.Duration

	// Verification polling
	VerifyPollInterval time.Duration
	VerifyMaxAttempts  int
}
