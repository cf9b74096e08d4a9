package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	firstAddr  = common.BigToAddress(big.NewInt(0x1001))
	secondAddr = common.BigToAddress(big.NewInt(0x1002))
	thirdAddr  = common.BigToAddress(big.NewInt(0x1003))
)

func statuses(report *domain.RunReport) map[string]domain.StageStatus {
	out := make(map[string]domain.StageStatus, len(report.Stages))
	for _, s := range report.Stages {
		out[s.Name] = s.Status
	}
	return out
}

func TestDeployContracts(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh run deploys in order and wires", func(t *testing.T) {
		h := newHarness(t)
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		report, err := h.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		require.Len(t, h.chain.deploys, 3)
		assert.Equal(t, "Base", h.chain.deploys[0].Artifact)
		assert.Empty(t, h.chain.deploys[0].Args)
		assert.Equal(t, "Mid", h.chain.deploys[1].Artifact)
		assert.Equal(t, []any{firstAddr}, h.chain.deploys[1].Args)
		assert.Equal(t, "Top", h.chain.deploys[2].Artifact)
		assert.Equal(t, []any{secondAddr, firstAddr}, h.chain.deploys[2].Args)

		require.Len(t, h.chain.transacts, 1)
		assert.Equal(t, secondAddr, h.chain.transacts[0].Target)
		assert.Equal(t, "initOwner", h.chain.transacts[0].Method)
		assert.Equal(t, []any{ownerAddr}, h.chain.transacts[0].Args)
		assert.True(t, h.chain.closed)

		assert.Equal(t, domain.RunDone, report.Status)
		assert.False(t, report.Failed())
		assert.Equal(t, senderAddr, report.Deployer)
		assert.NotEmpty(t, report.ID)
		assert.Equal(t, map[domain.ContractName]common.Address{
			"Base": firstAddr,
			"Mid":  secondAddr,
			"Top":  thirdAddr,
		}, report.Addresses)

		base := report.Stage("Base")
		assert.Equal(t, []domain.StageStatus{
			domain.StatusPending,
			domain.StatusResolving,
			domain.StatusDeploying,
			domain.StatusDeployed,
			domain.StatusVerifying,
			domain.StatusDone,
		}, base.History)
		assert.Equal(t, domain.ResolutionDeployed, base.Resolution)
		assert.Equal(t, domain.VerificationVerified, base.Verification)
		assert.NotEqual(t, common.Hash{}, base.TxHash)

		wire := report.Stage("Mid.initOwner")
		assert.Equal(t, []domain.StageStatus{domain.StatusPending, domain.StatusWiring, domain.StatusDone}, wire.History)

		sum := report.Summary()
		assert.Equal(t, 3, sum.Deployed)
		assert.Equal(t, 1, sum.Wired)
		assert.Equal(t, 3, sum.Verified)

		// three immediate saves plus the final one
		assert.Equal(t, 4, h.store.saves)
		assert.Equal(t, report.Addresses, h.store.snapshots["testnet"].Addresses)
		assert.Equal(t, domain.RunDone, h.store.reports["testnet"].Status)
		h.explorer.AssertNumberOfCalls(t, "VerifySource", 3)
	})

	t.Run("rerun is idempotent", func(t *testing.T) {
		h := newHarness(t)
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		_, err := h.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		again := newHarness(t)
		again.store = h.store
		again.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrAlreadyVerified)

		report, err := again.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		assert.Empty(t, again.chain.deploys)
		// wiring is reissued on every run
		assert.Len(t, again.chain.transacts, 1)

		sum := report.Summary()
		assert.Equal(t, 0, sum.Deployed)
		assert.Equal(t, 3, sum.Skipped)
		assert.Equal(t, 3, sum.AlreadyVerified)
		assert.Equal(t, 0, sum.VerificationFailure)

		base := report.Stage("Base")
		assert.Equal(t, []domain.StageStatus{
			domain.StatusPending,
			domain.StatusResolving,
			domain.StatusSkipped,
			domain.StatusVerifying,
			domain.StatusDone,
		}, base.History)
		assert.Equal(t, firstAddr, base.Address)
	})

	t.Run("fully deployed run without wiring never connects", func(t *testing.T) {
		h := newHarness(t)
		h.network.DeployedAddress = map[domain.ContractName]common.Address{
			"Base": firstAddr, "Mid": secondAddr, "Top": thirdAddr,
		}
		h.network.Verification.Enabled = false

		report, err := h.executor().Run(ctx, usecase.DeployParams{SkipWiring: true})
		require.NoError(t, err)

		assert.Equal(t, 0, h.connector.calls)
		assert.Equal(t, domain.StatusPending, report.Stage("Mid.initOwner").Status)
		assert.Equal(t, domain.VerificationDisabled, report.Stage("Top").Verification)
	})

	t.Run("seeded names are reused as constructor arguments", func(t *testing.T) {
		h := newHarness(t)
		seeded := common.HexToAddress("0x00000000000000000000000000000000000000b5")
		h.network.DeployedAddress["Base"] = seeded
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		report, err := h.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		require.Len(t, h.chain.deploys, 2)
		assert.Equal(t, []any{seeded}, h.chain.deploys[0].Args)
		assert.Equal(t, domain.ResolutionSkipped, report.Stage("Base").Resolution)
		assert.Equal(t, seeded, report.Addresses["Base"])
	})

	t.Run("deployment failure aborts and keeps earlier addresses", func(t *testing.T) {
		h := newHarness(t)
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		h.chain.failDeploy["Mid"] = errors.New("out of gas")

		report, err := h.executor().Run(ctx, usecase.DeployParams{})
		require.Error(t, err)
		require.NotNil(t, report)

		var txErr *domain.DeploymentTransactionError
		require.ErrorAs(t, err, &txErr)
		assert.Equal(t, domain.ContractName("Mid"), txErr.Name)
		assert.NotEqual(t, common.Hash{}, txErr.TxHash)

		assert.Equal(t, map[string]domain.StageStatus{
			"Base":          domain.StatusDone,
			"Mid":           domain.StatusFailed,
			"Top":           domain.StatusPending,
			"Mid.initOwner": domain.StatusPending,
		}, statuses(report))
		assert.True(t, report.Failed())
		assert.Equal(t, domain.RunFailed, report.Status)
		assert.Contains(t, report.Stage("Mid").Error, "out of gas")

		assert.Equal(t, map[domain.ContractName]common.Address{"Base": firstAddr}, h.store.snapshots["testnet"].Addresses)
		assert.Equal(t, domain.RunFailed, h.store.reports["testnet"].Status)

		// resuming deploys only what is missing
		resume := newHarness(t)
		resume.store = h.store
		resume.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		report, err = resume.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)
		require.Len(t, resume.chain.deploys, 2)
		assert.Equal(t, []any{firstAddr}, resume.chain.deploys[0].Args)
		assert.Equal(t, domain.ResolutionSkipped, report.Stage("Base").Resolution)
	})

	t.Run("wiring failure is fatal", func(t *testing.T) {
		h := newHarness(t)
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		h.chain.failCall["Mid.initOwner"] = domain.ErrTransactionReverted

		report, err := h.executor().Run(ctx, usecase.DeployParams{})

		var wireErr *domain.WiringTransactionError
		require.ErrorAs(t, err, &wireErr)
		assert.ErrorIs(t, err, domain.ErrTransactionReverted)
		assert.Equal(t, "initOwner", wireErr.Method)
		assert.Equal(t, domain.StatusFailed, report.Stage("Mid.initOwner").Status)
		assert.Len(t, report.Addresses, 3)
	})

	t.Run("verification failure is recorded but not fatal by default", func(t *testing.T) {
		h := newHarness(t)
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bytecode mismatch"))

		report, err := h.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		assert.Equal(t, 3, report.Summary().VerificationFailure)
		top := report.Stage("Top")
		assert.Equal(t, domain.StatusDone, top.Status)
		assert.Equal(t, domain.VerificationFailed, top.Verification)
		assert.Contains(t, top.VerifyDetail, "bytecode mismatch")
	})

	t.Run("fatal verification policy aborts after recording the address", func(t *testing.T) {
		h := newHarness(t)
		h.network.Verification.FailureIsFatal = true
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("explorer down"))

		report, err := h.executor().Run(ctx, usecase.DeployParams{})

		var verr *domain.VerificationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, h.chain.deploys, 1)
		base := report.Stage("Base")
		assert.Equal(t, domain.StatusFailed, base.Status)
		assert.Equal(t, domain.StatusVerifying, base.History[len(base.History)-2])
		assert.Equal(t, firstAddr, h.store.snapshots["testnet"].Addresses["Base"])
		assert.Equal(t, domain.StatusPending, report.Stage("Mid").Status)
	})

	t.Run("already verified is never fatal", func(t *testing.T) {
		h := newHarness(t)
		h.network.Verification.FailureIsFatal = true
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("Contract source code already verified"))

		report, err := h.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)
		assert.Equal(t, 3, report.Summary().AlreadyVerified)
	})

	t.Run("skip verification", func(t *testing.T) {
		h := newHarness(t)

		report, err := h.executor().Run(ctx, usecase.DeployParams{SkipVerification: true})
		require.NoError(t, err)

		h.explorer.AssertNotCalled(t, "VerifySource", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, domain.VerificationDisabled, report.Stage("Base").Verification)
	})

	t.Run("seeded contracts are not verified unless configured", func(t *testing.T) {
		h := newHarness(t)
		h.network.Verification.IncludeSeeded = false
		h.network.DeployedAddress["Base"] = firstAddr
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		report, err := h.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		assert.Equal(t, domain.VerificationDisabled, report.Stage("Base").Verification)
		h.explorer.AssertNumberOfCalls(t, "VerifySource", 2)
	})

	t.Run("verify only", func(t *testing.T) {
		h := newHarness(t)
		h.network.Verification.IncludeSeeded = false
		h.network.DeployedAddress["Base"] = firstAddr
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		report, err := h.executor().Run(ctx, usecase.DeployParams{VerifyOnly: true})
		require.NoError(t, err)

		assert.Equal(t, 0, h.connector.calls)
		assert.Equal(t, domain.VerificationVerified, report.Stage("Base").Verification)
		assert.Equal(t, domain.StatusPending, report.Stage("Mid").Status)
		assert.Equal(t, "not deployed", report.Stage("Mid").VerifyDetail)
		assert.Equal(t, domain.StatusPending, report.Stage("Mid.initOwner").Status)
		h.explorer.AssertNumberOfCalls(t, "VerifySource", 1)
	})

	t.Run("persistence failure is not fatal", func(t *testing.T) {
		h := newHarness(t)
		h.store.saveErr = errors.New("disk full")
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		report, err := h.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		assert.Len(t, report.Addresses, 3)
		assert.NotEmpty(t, h.progress.errors)
	})

	t.Run("declined confirmation broadcasts nothing", func(t *testing.T) {
		h := newHarness(t)
		h.cfg.NonInteractive = false
		h.confirmer.On("Confirm", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return assert.Contains(t, prompt, "Deploy 3 contracts and send 1 wiring transactions")
		})).Return(false, nil)

		report, err := h.executor().Run(ctx, usecase.DeployParams{})

		assert.ErrorIs(t, err, domain.ErrCancelled)
		assert.Nil(t, report)
		assert.Empty(t, h.chain.deploys)
		h.confirmer.AssertExpectations(t)
	})

	t.Run("connection failure", func(t *testing.T) {
		h := newHarness(t)
		h.connector.err = domain.ErrChainIDMismatch

		report, err := h.executor().Run(ctx, usecase.DeployParams{})

		assert.ErrorIs(t, err, domain.ErrChainIDMismatch)
		assert.Nil(t, report)
	})

	t.Run("conflicting seed sources", func(t *testing.T) {
		h := newHarness(t)
		h.network.DeployedAddress["Base"] = firstAddr
		h.store.snapshots["testnet"] = &domain.RegistrySnapshot{
			Network:   "testnet",
			ChainID:   1337,
			Addresses: map[domain.ContractName]common.Address{"Base": secondAddr},
		}

		_, err := h.executor().Run(ctx, usecase.DeployParams{})

		var dup *domain.DuplicateNameError
		assert.ErrorAs(t, err, &dup)
	})

	t.Run("persisted registry for another chain", func(t *testing.T) {
		h := newHarness(t)
		h.store.snapshots["testnet"] = &domain.RegistrySnapshot{Network: "testnet", ChainID: 1}

		_, err := h.executor().Run(ctx, usecase.DeployParams{})

		assert.ErrorIs(t, err, domain.ErrChainIDMismatch)
	})

	t.Run("missing network", func(t *testing.T) {
		h := newHarness(t)
		h.cfg.NetworkName = ""

		_, err := h.executor().Run(ctx, usecase.DeployParams{})

		assert.ErrorIs(t, err, usecase.ErrNoNetwork)
	})

	t.Run("interactive network pick", func(t *testing.T) {
		h := newHarness(t)
		h.cfg.NetworkName = ""
		h.cfg.NonInteractive = false
		h.selector.On("SelectNetwork", mock.Anything, []string{"testnet"}).Return("testnet", nil)

		loaded, err := h.loader().Load(ctx, "", usecase.LoadOptions{})
		require.NoError(t, err)

		assert.Equal(t, "testnet", loaded.Network.Name)
		h.selector.AssertExpectations(t)
	})

	t.Run("only restricts the run", func(t *testing.T) {
		h := newHarness(t)
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		report, err := h.executor().Run(ctx, usecase.DeployParams{Only: []string{"Mid"}})
		require.NoError(t, err)

		assert.Len(t, h.chain.deploys, 2)
		assert.Nil(t, report.Stage("Top"))
		assert.NotNil(t, report.Stage("Mid.initOwner"))
	})
}

func TestDeployContracts_Artifacts(t *testing.T) {
	ctx := context.Background()

	t.Run("missing artifact is a typed deployment failure", func(t *testing.T) {
		h := newHarness(t)
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		delete(h.artifacts, "Mid")

		report, err := h.executor().Run(ctx, usecase.DeployParams{})
		require.Error(t, err)

		var txErr *domain.DeploymentTransactionError
		require.ErrorAs(t, err, &txErr)
		assert.Equal(t, domain.ContractName("Mid"), txErr.Name)
		assert.Equal(t, "Mid", txErr.Artifact)
		assert.Equal(t, common.Hash{}, txErr.TxHash)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		require.Len(t, h.chain.deploys, 1)
		assert.Equal(t, domain.StatusFailed, report.Stage("Mid").Status)
		assert.Equal(t, common.Hash{}, report.Stage("Mid").TxHash)
	})
}

func TestDeployContracts_Externals(t *testing.T) {
	ctx := context.Background()

	t.Run("verify only does not need default addresses", func(t *testing.T) {
		h := newHarness(t)
		h.network.DefaultAddress = map[domain.ExternalName]common.Address{}
		h.network.DeployedAddress["Base"] = firstAddr
		h.network.Verification.IncludeSeeded = true
		h.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		report, err := h.executor().Run(ctx, usecase.DeployParams{VerifyOnly: true})
		require.NoError(t, err)

		assert.Equal(t, 0, h.connector.calls)
		assert.Equal(t, domain.VerificationVerified, report.Stage("Base").Verification)
	})

	t.Run("deploying still needs them", func(t *testing.T) {
		h := newHarness(t)
		h.network.DefaultAddress = map[domain.ExternalName]common.Address{}

		report, err := h.executor().Run(ctx, usecase.DeployParams{})

		var missing *usecase.MissingExternalsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []domain.ExternalName{"Owner"}, missing.Names)
		assert.Nil(t, report)
		assert.Equal(t, 0, h.connector.calls)
	})
}

func TestDeployContracts_UnconfirmedDeployments(t *testing.T) {
	ctx := context.Background()
	baseTx := common.BigToHash(big.NewInt(1))
	minedAddr := common.HexToAddress("0x000000000000000000000000000000000000beef")

	// timedOut leaves Base broadcast but unmined in the stored report
	timedOut := func(t *testing.T) *memoryStore {
		t.Helper()
		h := newHarness(t)
		h.chain.hangDeploy["Base"] = true

		runCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		report, err := h.executor().Run(runCtx, usecase.DeployParams{})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.NotNil(t, report)
		require.Len(t, h.chain.deploys, 1)

		stored := h.store.reports["testnet"]
		require.NotNil(t, stored)
		assert.Equal(t, domain.StatusFailed, stored.Stage("Base").Status)
		assert.Equal(t, baseTx, stored.Stage("Base").TxHash)
		return h.store
	}

	t.Run("mined deployment is recorded instead of redeployed", func(t *testing.T) {
		again := newHarness(t)
		again.store = timedOut(t)
		again.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		again.chain.receipts[baseTx] = &usecase.TxReceipt{TxHash: baseTx, Address: minedAddr, BlockNumber: 7}

		report, err := again.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		assert.Equal(t, []common.Hash{baseTx}, again.chain.lookups)
		require.Len(t, again.chain.deploys, 2)
		assert.Equal(t, "Mid", again.chain.deploys[0].Artifact)
		assert.Equal(t, []any{minedAddr}, again.chain.deploys[0].Args)

		base := report.Stage("Base")
		assert.Equal(t, domain.ResolutionSkipped, base.Resolution)
		assert.Equal(t, minedAddr, base.Address)
		assert.Equal(t, minedAddr, again.store.snapshots["testnet"].Addresses["Base"])
	})

	t.Run("pending deployment stops the run", func(t *testing.T) {
		again := newHarness(t)
		again.store = timedOut(t)
		again.chain.lookupErr[baseTx] = fmt.Errorf("%w: still in the mempool", domain.ErrTransactionPending)

		report, err := again.executor().Run(ctx, usecase.DeployParams{})
		require.Error(t, err)
		assert.Nil(t, report)

		var unconfirmed *domain.UnconfirmedDeploymentError
		require.ErrorAs(t, err, &unconfirmed)
		assert.Equal(t, domain.ContractName("Base"), unconfirmed.Name)
		assert.Equal(t, baseTx, unconfirmed.TxHash)
		assert.ErrorIs(t, err, domain.ErrTransactionPending)

		assert.Empty(t, again.chain.deploys)
		assert.Empty(t, again.chain.transacts)
		assert.True(t, again.chain.closed)
		// the failed report survives for the next attempt
		assert.Equal(t, baseTx, again.store.reports["testnet"].Stage("Base").TxHash)
	})

	t.Run("dropped deployment is redeployed", func(t *testing.T) {
		again := newHarness(t)
		again.store = timedOut(t)
		again.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := again.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		require.Len(t, again.chain.deploys, 3)
		assert.Equal(t, "Base", again.chain.deploys[0].Artifact)
	})

	t.Run("reverted deployment is redeployed", func(t *testing.T) {
		again := newHarness(t)
		again.store = timedOut(t)
		again.explorer.On("VerifySource", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		again.chain.receipts[baseTx] = &usecase.TxReceipt{TxHash: baseTx, Reverted: true}

		_, err := again.executor().Run(ctx, usecase.DeployParams{})
		require.NoError(t, err)

		require.Len(t, again.chain.deploys, 3)
		assert.Equal(t, "Base", again.chain.deploys[0].Artifact)
	})

	t.Run("lookup failure stops the run", func(t *testing.T) {
		again := newHarness(t)
		again.store = timedOut(t)
		again.chain.lookupErr[baseTx] = errors.New("connection refused")

		_, err := again.executor().Run(ctx, usecase.DeployParams{})

		var unconfirmed *domain.UnconfirmedDeploymentError
		require.ErrorAs(t, err, &unconfirmed)
		assert.Empty(t, again.chain.deploys)
	})
}
