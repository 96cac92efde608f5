package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
)

type stopRunRequest struct {
	Id string `params:"id"`
}

func (r *stopRunRequest) Validate() error {
	var errList []error
	if r.Id == "" {
		errList = append(errList, errors.New("'id' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type stopRunResult struct {
	Stopping bool `json:"stopping"`
}

type stopRunResponse = HttpResponse[stopRunResult]

// StopRun requests stop-after-current-batch. The batch in flight always
// completes; the run halts before the next one starts.
func (h *HttpHandler) StopRun(ctx *fiber.Ctx) (err error) {
	var req stopRunRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	if err := h.usecase.StopRun(req.Id); err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("run not found")
		}
		return errors.Wrap(err, "error during StopRun")
	}

	resp := stopRunResponse{
		Result: &stopRunResult{Stopping: true},
	}
	return errors.WithStack(ctx.JSON(resp))
}
