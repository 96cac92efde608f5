package entity

import "github.com/shopspring/decimal"

// BatchPlan is the ephemeral result of partitioning a validated recipient
// list before any chain interaction. It is never persisted.
type BatchPlan struct {
	Batches [][]Recipient

	ValidAddressCount   int
	InvalidAddressCount int
	InvalidRecipients   []Recipient

	TotalBatches int

	// Cost model: totalBatches * perBatchFee + totalRecipients * minUtxo.
	EstimatedFeeLovelace     uint64
	EstimatedMinUtxoLovelace uint64
	EstimatedTotalLovelace   uint64
	EstimatedTotalAda        decimal.Decimal

	// Naive wall-clock estimate from a fixed per-batch constant. An estimate
	// only, not a guarantee.
	EstimatedTimeMinutes float64
}
