package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
)

type getSnapshotRequest struct {
	Id string `params:"id"`
}

func (r *getSnapshotRequest) Validate() error {
	var errList []error
	if r.Id == "" {
		errList = append(errList, errors.New("'id' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getSnapshotResult struct {
	Id         string      `json:"id"`
	Rule       string      `json:"rule,omitempty"`
	Recipients []recipient `json:"recipients"`
	TakenAt    int64       `json:"takenAt"` // unix timestamp
}

type getSnapshotResponse = HttpResponse[getSnapshotResult]

func (h *HttpHandler) GetSnapshot(ctx *fiber.Ctx) (err error) {
	var req getSnapshotRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	snapshot, err := h.usecase.GetSnapshot(ctx.UserContext(), req.Id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("snapshot not found")
		}
		return errors.Wrap(err, "error during GetSnapshot")
	}

	resp := getSnapshotResponse{
		Result: &getSnapshotResult{
			Id:         snapshot.Id,
			Rule:       snapshot.Rule,
			Recipients: fromEntityRecipients(snapshot.Recipients),
			TakenAt:    snapshot.TakenAt.Unix(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
