package minter

import (
	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBatchSize is the practical ceiling for one transaction's output
	// count before hitting transaction size and fee limits.
	DefaultBatchSize = 10

	// Flat fee charged per minting transaction, in lovelace.
	perBatchFeeLovelace = 250_000

	// Minimum value that must accompany each new on-chain output, in lovelace.
	minUtxoReserveLovelace = 1_500_000

	// Pre-run wall-clock estimate per batch. Covers signing, submission and
	// one confirmation round trip. At run time the executor replaces this
	// with observed batch latency.
	fixedSecondsPerBatch = 90
)

var lovelacePerAda = decimal.NewFromInt(1_000_000)

// Partition splits recipients into consecutive chunks of at most batchSize.
// The last chunk may be shorter. Deterministic for a given input and size.
func Partition(recipients []entity.Recipient, batchSize int) [][]entity.Recipient {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if len(recipients) == 0 {
		return nil
	}
	return lo.Chunk(recipients, batchSize)
}

// PlanBatches validates the recipient list, partitions the valid portion and
// estimates the run's cost and duration. No chain interaction occurs.
//
// Cost model: totalBatches * perBatchFee + totalValidRecipients * minUtxo.
func PlanBatches(recipients []entity.Recipient, batchSize int, network common.Network) *entity.BatchPlan {
	validation := ValidateRecipients(recipients, network)
	batches := Partition(validation.Valid, batchSize)

	totalBatches := len(batches)
	totalValid := len(validation.Valid)

	estimatedFee := uint64(totalBatches) * perBatchFeeLovelace
	estimatedMinUtxo := uint64(totalValid) * minUtxoReserveLovelace
	estimatedTotal := estimatedFee + estimatedMinUtxo

	return &entity.BatchPlan{
		Batches:                  batches,
		ValidAddressCount:        totalValid,
		InvalidAddressCount:      len(validation.Invalid),
		InvalidRecipients:        validation.Invalid,
		TotalBatches:             totalBatches,
		EstimatedFeeLovelace:     estimatedFee,
		EstimatedMinUtxoLovelace: estimatedMinUtxo,
		EstimatedTotalLovelace:   estimatedTotal,
		EstimatedTotalAda:        decimal.NewFromInt(int64(estimatedTotal)).Div(lovelacePerAda),
		EstimatedTimeMinutes:     float64(totalBatches*fixedSecondsPerBatch) / 60,
	}
}

// PreflightPolicyCheck verifies that the connected wallet's payment
// credential can satisfy the policy's signature requirement. Checked once,
// up front: a mismatch is deterministic and would fail every batch
// identically, so it blocks the run entirely.
func PreflightPolicyCheck(policy *entity.Policy, walletAddress cardano.Address) error {
	if !walletAddress.HasKeyHashCredential() {
		return errors.Wrapf(errs.PolicyWalletMismatch, "wallet address %q has no key-hash payment credential", walletAddress)
	}
	expected := policy.KeyHash()
	actual := walletAddress.PaymentKeyHash()
	if expected != actual {
		return errors.Wrapf(errs.PolicyWalletMismatch, "policy %s requires key hash %s, connected wallet derives %s", policy.PolicyId, expected, actual)
	}
	return nil
}
