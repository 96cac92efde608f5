package minter

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/chain"
	"github.com/questline/mint-console/modules/minter/datagateway"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/modules/minter/wallet"
	"github.com/questline/mint-console/pkg/cardano"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
)

const (
	// Validity window for each batch transaction, in slots past the tip.
	defaultTTLSlots = 7200

	// Weight of the latest observation in the batch-latency moving average.
	latencySmoothing = 0.5
)

// Executor drives mint runs batch by batch, strictly sequentially: each
// batch consumes wallet UTXOs that the next batch depends on, and the wallet
// holds at most one in-flight signing request.
type Executor struct {
	wallet         wallet.Connector
	chain          chain.Client
	registry       datagateway.RegistryDataGateway
	ledger         datagateway.MintLedgerDataGateway
	network        common.Network
	confirmTimeout time.Duration
}

func NewExecutor(walletConn wallet.Connector, chainClient chain.Client, registry datagateway.RegistryDataGateway, ledger datagateway.MintLedgerDataGateway, network common.Network, confirmTimeout time.Duration) *Executor {
	return &Executor{
		wallet:         walletConn,
		chain:          chainClient,
		registry:       registry,
		ledger:         ledger,
		network:        network,
		confirmTimeout: confirmTimeout,
	}
}

// Plan partitions and prices a recipient list without touching the chain.
func (e *Executor) Plan(recipients []entity.Recipient, batchSize int) *entity.BatchPlan {
	return PlanBatches(recipients, batchSize, e.network)
}

// Run executes one mint run to completion. Fatal errors (wallet unreachable,
// policy mismatch, no valid recipients) abort before any transaction is
// built. Per-batch errors never propagate past the batch boundary: a failed
// batch is reported in the summary and the loop proceeds to the next one.
func (e *Executor) Run(ctx context.Context, params entity.RunParams) (*entity.RunSummary, error) {
	if params.Design == nil || params.Policy == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "design and policy are required")
	}
	if params.Design.PolicyId != params.Policy.PolicyId {
		return nil, errors.Wrapf(errs.InvalidArgument, "design %q belongs to policy %s, not %s", params.Design.TokenType, params.Design.PolicyId, params.Policy.PolicyId)
	}
	if params.StartMintNumber == 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "start mint number must be allocated before the run")
	}

	e.emit(params.Events, entity.ProgressEvent{
		State:  entity.RunStatePreparing,
		Status: "connecting wallet",
	})

	walletAddress, err := e.wallet.Connect(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't connect wallet")
	}
	defer func() {
		if err := e.wallet.Disconnect(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to disconnect wallet after run", slogx.Error(err))
		}
	}()

	if err := PreflightPolicyCheck(params.Policy, walletAddress); err != nil {
		return nil, errors.WithStack(err)
	}

	validation := ValidateRecipients(params.Recipients, e.network)
	if len(validation.Invalid) > 0 {
		logger.InfoContext(ctx, "Excluded invalid recipients from run",
			slogx.Int("invalid_count", len(validation.Invalid)),
			slogx.Int("valid_count", len(validation.Valid)),
		)
	}
	if len(validation.Valid) == 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "no valid recipients to mint for")
	}

	batches := Partition(validation.Valid, params.BatchSize)
	totalValid := len(validation.Valid)
	totalBatches := len(batches)

	logger.InfoContext(ctx, "Starting mint run",
		slogx.String("token_type", params.Design.TokenType),
		slogx.Uint64("start_mint_number", params.StartMintNumber),
		slogx.Int("recipients", totalValid),
		slogx.Int("batches", totalBatches),
	)

	summary := &entity.RunSummary{
		TransactionHashes: make([]string, 0, totalBatches),
		BatchResults:      make([]entity.BatchResult, 0, totalBatches),
	}

	var (
		attempted       int
		attemptedBatch  int
		offset          uint64
		avgBatchLatency time.Duration
	)
	for i, batch := range batches {
		batchNumber := i + 1

		if params.Stop != nil && params.Stop.Stopped() {
			logger.InfoContext(ctx, "Stop requested, halting before next batch",
				slogx.Int("next_batch", batchNumber),
				slogx.Int("total_batches", totalBatches),
			)
			break
		}

		emitStage := func(stage entity.BatchStage, status string) {
			remaining := time.Duration(0)
			if avgBatchLatency > 0 {
				remaining = time.Duration(float64(avgBatchLatency) * float64(totalBatches-i))
			}
			e.emit(params.Events, entity.ProgressEvent{
				State:              entity.RunStateMinting,
				Current:            attempted,
				Total:              totalValid,
				CurrentBatch:       batchNumber,
				TotalBatches:       totalBatches,
				Stage:              stage,
				Status:             status,
				EstimatedRemaining: remaining,
			})
		}

		startedAt := time.Now()
		result, built := e.runBatch(ctx, params, batch, params.StartMintNumber+offset, batchNumber, walletAddress, emitStage)
		elapsed := time.Since(startedAt)
		if avgBatchLatency == 0 {
			avgBatchLatency = elapsed
		} else {
			avgBatchLatency = time.Duration(latencySmoothing*float64(elapsed) + (1-latencySmoothing)*float64(avgBatchLatency))
		}

		offset += uint64(len(batch))
		attempted += len(batch)
		attemptedBatch++

		if result.Success {
			e.recordBatch(ctx, params.Design, built, batchNumber, result.TxHash)
			summary.TotalMinted += len(batch)
			summary.TransactionHashes = append(summary.TransactionHashes, result.TxHash)
			emitStage(entity.BatchStageSucceeded, fmt.Sprintf("batch %d/%d confirmed", batchNumber, totalBatches))
		} else {
			summary.TotalFailed += len(batch)
			for _, recipient := range batch {
				summary.FailedAddresses = append(summary.FailedAddresses, recipient.Address)
			}
			logger.ErrorContext(ctx, "Batch failed, continuing run",
				slogx.Error(result.Error),
				slogx.Int("batch", batchNumber),
				slogx.Int("total_batches", totalBatches),
			)
			emitStage(entity.BatchStageFailed, fmt.Sprintf("batch %d/%d failed", batchNumber, totalBatches))
		}

		summary.BatchResults = append(summary.BatchResults, result)
		if params.OnBatchComplete != nil {
			params.OnBatchComplete(result)
		}
	}

	summary.Success = summary.TotalFailed == 0 && attemptedBatch == totalBatches

	finalState := entity.RunStateComplete
	if !summary.Success {
		finalState = entity.RunStatePartiallyFailed
	}
	e.emit(params.Events, entity.ProgressEvent{
		State:        finalState,
		Current:      attempted,
		Total:        totalValid,
		CurrentBatch: attemptedBatch,
		TotalBatches: totalBatches,
		Status:       fmt.Sprintf("minted %d, failed %d", summary.TotalMinted, summary.TotalFailed),
	})

	logger.InfoContext(ctx, "Mint run finished",
		slogx.String("token_type", params.Design.TokenType),
		slogx.Bool("success", summary.Success),
		slogx.Int("total_minted", summary.TotalMinted),
		slogx.Int("total_failed", summary.TotalFailed),
	)
	return summary, nil
}

// runBatch drives one batch through build, sign, submit and confirm. All
// errors are converted into the returned BatchResult, never propagated.
func (e *Executor) runBatch(ctx context.Context, params entity.RunParams, recipients []entity.Recipient, startMintNumber uint64, batchNumber int, changeAddress cardano.Address, emitStage func(entity.BatchStage, string)) (entity.BatchResult, *BatchTx) {
	result := entity.BatchResult{
		BatchIndex: batchNumber,
		Recipients: recipients,
	}
	fail := func(err error, msg string) (entity.BatchResult, *BatchTx) {
		result.Error = errors.Wrapf(err, "batch %d (%d recipients): %s", batchNumber, len(recipients), msg)
		return result, nil
	}

	emitStage(entity.BatchStageBuilding, "building transaction")

	tipSlot, err := e.chain.TipSlot(ctx)
	if err != nil {
		return fail(err, "can't fetch chain tip")
	}
	utxos, err := e.wallet.UTXOs(ctx)
	if err != nil {
		return fail(err, "can't fetch wallet utxos")
	}

	ttlSlot := tipSlot + defaultTTLSlots
	if expiry, ok := params.Policy.Script.ExpirySlot(); ok && ttlSlot > expiry {
		ttlSlot = expiry
	}

	built, err := BuildBatchTx(BuildBatchParams{
		Design:          params.Design,
		Policy:          params.Policy,
		Recipients:      recipients,
		StartMintNumber: startMintNumber,
		Network:         e.network,
		UTXOs:           utxos,
		ChangeAddress:   changeAddress,
		TTLSlot:         ttlSlot,
	})
	if err != nil {
		return fail(err, "can't build transaction")
	}

	emitStage(entity.BatchStageAwaitingSignature, "awaiting wallet signature")

	witnesses, err := e.wallet.SignTx(ctx, built.Tx)
	if err != nil {
		return fail(err, "signing failed")
	}
	built.Tx.VKeyWitnesses = witnesses

	rawTx, err := built.Tx.Bytes()
	if err != nil {
		return fail(err, "can't serialize signed transaction")
	}

	emitStage(entity.BatchStageSubmitting, "submitting transaction")

	txHash, err := e.chain.SubmitTx(ctx, rawTx)
	if err != nil {
		return fail(err, "submission failed")
	}

	emitStage(entity.BatchStageConfirming, "awaiting confirmation")

	if err := e.chain.AwaitConfirmation(ctx, txHash, e.confirmTimeout); err != nil {
		return fail(err, "confirmation failed")
	}

	result.Success = true
	result.TxHash = txHash.String()
	result.AssetIds = built.AssetIds
	return result, built
}

// recordBatch writes one ledger record per minted asset using the sequence
// numbers assigned at build time, then advances the design's counter by the
// confirmed count. Failures here do not undo the on-chain mint: they are
// logged as reconciliation-required and the run proceeds.
func (e *Executor) recordBatch(ctx context.Context, design *entity.Design, built *BatchTx, batchNumber int, txHash string) {
	now := time.Now()
	for i := range built.Recipients {
		record := &entity.MintRecord{
			Id:            fmt.Sprintf("%s-%d", design.TokenType, built.MintNumbers[i]),
			TokenType:     design.TokenType,
			MintNumber:    built.MintNumbers[i],
			PolicyId:      design.PolicyId.String(),
			AssetName:     built.AssetNames[i],
			AssetId:       built.AssetIds[i],
			RecipientAddr: built.Recipients[i].Address,
			RecipientName: built.Recipients[i].DisplayName,
			BatchNumber:   batchNumber,
			TxHash:        txHash,
			Network:       e.network,
			Status:        entity.MintStatusConfirmed,
			MintedAt:      now,
			CreatedAt:     now,
		}
		if err := e.ledger.CreateMintRecord(ctx, record); err != nil {
			logger.ErrorContext(ctx, "Ledger write failed for confirmed mint, reconciliation required",
				slogx.Error(err),
				slogx.String("asset_id", record.AssetId),
				slogx.Uint64("mint_number", record.MintNumber),
				slogx.String("tx_hash", txHash),
			)
		}
	}
	if err := e.registry.AdvanceSequence(ctx, design.TokenType, uint64(len(built.Recipients))); err != nil {
		logger.ErrorContext(ctx, "Failed to advance design mint counter, reconciliation required",
			slogx.Error(err),
			slogx.String("token_type", design.TokenType),
			slogx.Uint64("confirmed", uint64(len(built.Recipients))),
		)
	}
}

// emit delivers an event without ever blocking the batch loop: if the
// channel is full the event is dropped.
func (e *Executor) emit(events chan<- entity.ProgressEvent, event entity.ProgressEvent) {
	if events == nil {
		return
	}
	select {
	case events <- event:
	default:
	}
}
