package verification

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/dodoex/dodo-deploy/internal/usecase"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 10
)

// ErrVerificationPending is returned when the explorer never finished checking a submission
var ErrVerificationPending = errors.New("verification still pending")

// EtherscanVerifier submits standard-json-input to Etherscan-compatible explorers
type EtherscanVerifier struct {
	client       *http.Client
	pollInterval time.Duration
	maxAttempts  int
	log          *slog.Logger
}

// NewEtherscanVerifier creates a new explorer client
func NewEtherscanVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *EtherscanVerifier {
	v := &EtherscanVerifier{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxAttempts,
		log:          log.With("component", "EtherscanVerifier"),
	}
	if cfg.VerifyPollInterval > 0 {
		v.pollInterval = cfg.VerifyPollInterval
	}
	if cfg.VerifyMaxAttempts > 0 {
		v.maxAttempts = cfg.VerifyMaxAttempts
	}
	return v
}

// etherscanResponse represents Etherscan API response
type etherscanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// buildInfo is the part of a Hardhat build-info file the explorer needs
type buildInfo struct {
	SolcLongVersion string          `json:"solcLongVersion"`
	Input           json.RawMessage `json:"input"`
}

// VerifySource submits the contract and polls until the explorer decides
func (v *EtherscanVerifier) VerifySource(ctx context.Context, network *config.NetworkConfig, sub usecase.SourceSubmission) error {
	endpoint := apiEndpoint(network)
	if endpoint == "" {
		return fmt.Errorf("no explorer_api_url configured for network %s", network.Name)
	}
	if sub.Artifact.BuildInfoPath == "" {
		return fmt.Errorf("no build info for %s", sub.Artifact.FullyQualifiedName())
	}
	info, err := readBuildInfo(sub.Artifact.BuildInfoPath)
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("apikey", network.Chain.ExplorerAPIKey)
	data.Set("chainid", strconv.FormatUint(network.Chain.ChainID, 10))
	data.Set("module", "contract")
	data.Set("action", "verifysourcecode")
	data.Set("contractaddress", sub.Address.Hex())
	data.Set("sourceCode", string(info.Input))
	data.Set("codeformat", "solidity-standard-json-input")
	data.Set("contractname", sub.Artifact.FullyQualifiedName())
	data.Set("compilerversion", "v"+strings.TrimPrefix(info.SolcLongVersion, "v"))
	if len(sub.ConstructorArgs) > 0 {
		data.Set("constructorArguements", hex.EncodeToString(sub.ConstructorArgs)) // Note: Etherscan typo
	}

	result, err := v.post(ctx, endpoint, data)
	if err != nil {
		return fmt.Errorf("failed to submit verification: %w", err)
	}
	if result.Status != "1" {
		return responseError(result)
	}

	guid := result.Result
	v.log.Debug("verification submitted", "name", sub.Name, "address", sub.Address.Hex(), "guid", guid)
	return v.waitForStatus(ctx, network, endpoint, guid)
}

func (v *EtherscanVerifier) waitForStatus(ctx context.Context, network *config.NetworkConfig, endpoint, guid string) error {
	ticker := time.NewTicker(v.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= v.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		result, err := v.checkStatus(ctx, network, endpoint, guid)
		if err != nil {
			return err
		}
		if strings.Contains(strings.ToLower(result.Result), "pending") {
			v.log.Debug("verification pending", "guid", guid, "attempt", attempt)
			continue
		}
		if result.Status != "1" {
			return responseError(result)
		}
		return nil
	}
	return fmt.Errorf("%w after %d checks (guid %s)", ErrVerificationPending, v.maxAttempts, guid)
}

// checkStatus checks the status of a pending verification
func (v *EtherscanVerifier) checkStatus(ctx context.Context, network *config.NetworkConfig, endpoint, guid string) (*etherscanResponse, error) {
	params := url.Values{}
	params.Set("apikey", network.Chain.ExplorerAPIKey)
	params.Set("chainid", strconv.FormatUint(network.Chain.ChainID, 10))
	params.Set("module", "contract")
	params.Set("action", "checkverifystatus")
	params.Set("guid", guid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	result, err := v.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to check status: %w", err)
	}
	return result, nil
}

func (v *EtherscanVerifier) post(ctx context.Context, endpoint string, data url.Values) (*etherscanResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return v.do(req)
}

func (v *EtherscanVerifier) do(req *http.Request) (*etherscanResponse, error) {
	resp, err := v.client.Do(req) //nolint:gosec // URL is constructed from configured explorer endpoint
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned HTTP %d", resp.StatusCode)
	}

	var result etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// responseError maps an explorer rejection. "Already verified" is reported as
// domain.ErrAlreadyVerified.
func responseError(result *etherscanResponse) error {
	msg := result.Result
	if msg == "" {
		msg = result.Message
	}
	if strings.Contains(strings.ToLower(msg), "already verified") {
		return domain.ErrAlreadyVerified
	}
	return fmt.Errorf("explorer rejected verification: %s", msg)
}

func apiEndpoint(network *config.NetworkConfig) string {
	if network.Chain.ExplorerAPIURL != "" {
		return network.Chain.ExplorerAPIURL
	}
	if network.Chain.ExplorerURL != "" {
		return strings.TrimSuffix(network.Chain.ExplorerURL, "/") + "/api"
	}
	return ""
}

func readBuildInfo(path string) (*buildInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read build info: %w", err)
	}
	var info buildInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse build info %s: %w", path, err)
	}
	if info.SolcLongVersion == "" || len(info.Input) == 0 {
		return nil, fmt.Errorf("build info %s has no compiler input", path)
	}
	return &info, nil
}

var _ usecase.SourceVerifier = (*EtherscanVerifier)(nil)
