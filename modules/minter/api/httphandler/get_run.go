package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
)

type getRunRequest struct {
	Id string `params:"id"`
}

func (r *getRunRequest) Validate() error {
	var errList []error
	if r.Id == "" {
		errList = append(errList, errors.New("'id' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type runProgress struct {
	Current            int     `json:"current"`
	Total              int     `json:"total"`
	CurrentBatch       int     `json:"currentBatch"`
	TotalBatches       int     `json:"totalBatches"`
	Stage              string  `json:"stage"`
	Status             string  `json:"status"`
	EstimatedRemaining float64 `json:"estimatedRemainingSeconds"`
}

type runBatchResult struct {
	BatchIndex int      `json:"batchIndex"`
	Success    bool     `json:"success"`
	TxHash     string   `json:"txHash,omitempty"`
	AssetIds   []string `json:"assetIds,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type runSummary struct {
	Success           bool             `json:"success"`
	TotalMinted       int              `json:"totalMinted"`
	TotalFailed       int              `json:"totalFailed"`
	TransactionHashes []string         `json:"transactionHashes"`
	FailedAddresses   []string         `json:"failedAddresses,omitempty"`
	BatchResults      []runBatchResult `json:"batchResults"`
}

type getRunResult struct {
	Id            string      `json:"id"`
	TokenType     string      `json:"tokenType"`
	SnapshotId    string      `json:"snapshotId,omitempty"`
	State         string      `json:"state"`
	StartedAt     int64       `json:"startedAt"` // unix timestamp
	FinishedAt    *int64      `json:"finishedAt,omitempty"`
	StopRequested bool        `json:"stopRequested"`
	Progress      runProgress `json:"progress"`
	Summary       *runSummary `json:"summary,omitempty"`
	Error         string      `json:"error,omitempty"`
}

type getRunResponse = HttpResponse[getRunResult]

func (h *HttpHandler) GetRun(ctx *fiber.Ctx) (err error) {
	var req getRunRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	status, err := h.usecase.GetRunStatus(req.Id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("run not found")
		}
		return errors.Wrap(err, "error during GetRunStatus")
	}

	result := getRunResult{
		Id:            status.Id,
		TokenType:     status.TokenType,
		SnapshotId:    status.SnapshotId,
		State:         string(status.State),
		StartedAt:     status.StartedAt.Unix(),
		StopRequested: status.StopRequested,
		Progress: runProgress{
			Current:            status.Progress.Current,
			Total:              status.Progress.Total,
			CurrentBatch:       status.Progress.CurrentBatch,
			TotalBatches:       status.Progress.TotalBatches,
			Stage:              string(status.Progress.Stage),
			Status:             status.Progress.Status,
			EstimatedRemaining: status.Progress.EstimatedRemaining.Round(time.Second).Seconds(),
		},
		Error: status.Error,
	}
	if status.FinishedAt != nil {
		finishedAt := status.FinishedAt.Unix()
		result.FinishedAt = &finishedAt
	}
	if status.Summary != nil {
		batchResults := make([]runBatchResult, 0, len(status.Summary.BatchResults))
		for _, batch := range status.Summary.BatchResults {
			item := runBatchResult{
				BatchIndex: batch.BatchIndex,
				Success:    batch.Success,
				TxHash:     batch.TxHash,
				AssetIds:   batch.AssetIds,
			}
			if batch.Error != nil {
				item.Error = batch.Error.Error()
			}
			batchResults = append(batchResults, item)
		}
		result.Summary = &runSummary{
			Success:           status.Summary.Success,
			TotalMinted:       status.Summary.TotalMinted,
			TotalFailed:       status.Summary.TotalFailed,
			TransactionHashes: status.Summary.TransactionHashes,
			FailedAddresses:   status.Summary.FailedAddresses,
			BatchResults:      batchResults,
		}
	}

	resp := getRunResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
