package domain_test

import (
	"math/big"
	"testing"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageDependencies(t *testing.T) {
	t.Run("deploy dependencies come from refs", func(t *testing.T) {
		stage := domain.Deploy("factories", "DVMFactory", "DVMFactory",
			domain.Ref("CloneFactory"),
			domain.Ref("DVM"),
			domain.Ref("MultiSig"),
			domain.Ref("CloneFactory"),
		)

		assert.Equal(t, []domain.ContractName{"CloneFactory", "DVM", "MultiSig"}, stage.Dependencies())
		assert.False(t, stage.SelfReference())
	})

	t.Run("wire stages depend on their target", func(t *testing.T) {
		stage := domain.Wire("allow-list", "DODOApprove", "init",
			domain.Ref("MultiSig"),
			domain.Ref("DODOApproveProxy"),
		)

		assert.Equal(t, "DODOApprove.init", stage.Name)
		assert.Equal(t, []domain.ContractName{"DODOApprove", "MultiSig", "DODOApproveProxy"}, stage.Dependencies())
	})

	t.Run("address lists and externals", func(t *testing.T) {
		stage := domain.Deploy("governance", "MultiSig", "MultiSigWalletWithTimelock",
			domain.AddressList(domain.External("Owner1"), domain.External("Owner2"), domain.Ref("Helper")),
			domain.Lit(big.NewInt(2)),
		)

		assert.Equal(t, []domain.ContractName{"Helper"}, stage.Dependencies())
		assert.Equal(t, []domain.ExternalName{"Owner1", "Owner2"}, stage.Externals())
		assert.Equal(t, "([$Owner1, $Owner2, @Helper], 2)", stage.DescribeArgs())
	})

	t.Run("self reference is detected", func(t *testing.T) {
		stage := domain.Deploy("x", "Loop", "Loop", domain.Ref("Loop"))

		assert.True(t, stage.SelfReference())
		assert.Empty(t, stage.Dependencies())
	})

	t.Run("explicit ordering dependencies", func(t *testing.T) {
		stage := domain.Deploy("x", "Late", "Late").DependsOn("Early")

		assert.Equal(t, []domain.ContractName{"Early"}, stage.Dependencies())
	})
}

func TestStageBuildArgs(t *testing.T) {
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	helper := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	reg := domain.NewAddressRegistry()
	require.NoError(t, reg.Set("Helper", helper))
	env := domain.NetworkEnv{
		AddressReader: reg,
		Defaults:      map[domain.ExternalName]common.Address{"Owner1": owner},
	}

	t.Run("resolves refs externals and literals", func(t *testing.T) {
		stage := domain.Deploy("x", "Thing", "Thing",
			domain.AddressList(domain.External("Owner1"), domain.Ref("Helper")),
			domain.Ref("Helper"),
			domain.Lit(big.NewInt(7)),
		)

		args, err := stage.BuildArgs(env)
		require.NoError(t, err)
		require.Len(t, args, 3)
		assert.Equal(t, []common.Address{owner, helper}, args[0])
		assert.Equal(t, helper, args[1])
		assert.Equal(t, big.NewInt(7), args[2])
	})

	t.Run("unresolved contract reference", func(t *testing.T) {
		stage := domain.Deploy("x", "Thing", "Thing", domain.Ref("Missing"))

		_, err := stage.BuildArgs(env)

		var unresolved *domain.UnresolvedNameError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "Missing", unresolved.Name)
	})

	t.Run("unresolved external", func(t *testing.T) {
		stage := domain.Deploy("x", "Thing", "Thing", domain.External("FeeReceiver"))

		_, err := stage.BuildArgs(env)

		var unresolved *domain.UnresolvedNameError
		require.ErrorAs(t, err, &unresolved)
		assert.True(t, unresolved.External)
	})
}
