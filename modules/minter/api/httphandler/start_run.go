package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/usecase"
)

type startRunRequest struct {
	TokenType  string      `json:"tokenType"`
	SnapshotId string      `json:"snapshotId"`
	Recipients []recipient `json:"recipients"`
	BatchSize  int         `json:"batchSize"`
}

func (r *startRunRequest) Validate() error {
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

type startRunResult struct {
	RunId string `json:"runId"`
}

type startRunResponse = HttpResponse[startRunResult]

func (h *HttpHandler) StartRun(ctx *fiber.Ctx) (err error) {
	var req startRunRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	runId, err := h.usecase.StartMintRun(ctx.UserContext(), usecase.RunOptions{
		TokenType:  req.TokenType,
		SnapshotId: req.SnapshotId,
		Recipients: toEntityRecipients(req.Recipients),
		BatchSize:  req.BatchSize,
	})
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("design, policy or snapshot not found")
		}
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "invalid run request")
		}
		return errors.Wrap(err, "error during StartMintRun")
	}

	resp := startRunResponse{
		Result: &startRunResult{RunId: runId},
	}
	return errors.WithStack(ctx.JSON(resp))
}
