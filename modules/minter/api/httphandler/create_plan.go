package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
)

type createPlanRequest struct {
	TokenType  string      `json:"tokenType"`
	SnapshotId string      `json:"snapshotId"`
	Recipients []recipient `json:"recipients"`
	BatchSize  int         `json:"batchSize"`
}

func (r *createPlanRequest) Validate() error {
	var errList []error
	if r.TokenType == "" {
		errList = append(errList, errors.New("'tokenType' is required"))
	}
	if r.SnapshotId == "" && len(r.Recipients) == 0 {
		errList = append(errList, errors.New("either 'snapshotId' or 'recipients' is required"))
	}
	if r.BatchSize < 0 {
		errList = append(errList, errors.New("'batchSize' must not be negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createPlanResult struct {
	TotalBatches        int         `json:"totalBatches"`
	ValidAddressCount   int         `json:"validAddressCount"`
	InvalidAddressCount int         `json:"invalidAddressCount"`
	InvalidRecipients   []recipient `json:"invalidRecipients,omitempty"`

	EstimatedFeeLovelace     uint64  `json:"estimatedFeeLovelace"`
	EstimatedMinUtxoLovelace uint64  `json:"estimatedMinUtxoLovelace"`
	EstimatedTotalLovelace   uint64  `json:"estimatedTotalLovelace"`
	EstimatedTotalAda        string  `json:"estimatedTotalAda"`
	EstimatedTimeMinutes     float64 `json:"estimatedTimeMinutes"`

	WalletBalanceLovelace uint64 `json:"walletBalanceLovelace"`
	Affordable            bool   `json:"affordable"`
}

type createPlanResponse = HttpResponse[createPlanResult]

func (h *HttpHandler) CreatePlan(ctx *fiber.Ctx) (err error) {
	var req createPlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	preview, err := h.usecase.PlanMint(ctx.UserContext(), req.TokenType, req.SnapshotId, toEntityRecipients(req.Recipients), req.BatchSize)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("design or snapshot not found")
		}
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "invalid plan request")
		}
		return errors.Wrap(err, "error during PlanMint")
	}

	plan := preview.Plan
	resp := createPlanResponse{
		Result: &createPlanResult{
			TotalBatches:             plan.TotalBatches,
			ValidAddressCount:        plan.ValidAddressCount,
			InvalidAddressCount:      plan.InvalidAddressCount,
			InvalidRecipients:        fromEntityRecipients(plan.InvalidRecipients),
			EstimatedFeeLovelace:     plan.EstimatedFeeLovelace,
			EstimatedMinUtxoLovelace: plan.EstimatedMinUtxoLovelace,
			EstimatedTotalLovelace:   plan.EstimatedTotalLovelace,
			EstimatedTotalAda:        plan.EstimatedTotalAda.String(),
			EstimatedTimeMinutes:     plan.EstimatedTimeMinutes,
			WalletBalanceLovelace:    preview.WalletBalanceLovelace,
			Affordable:               preview.Affordable,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
