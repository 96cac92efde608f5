package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
)

type replaceSnapshotRequest struct {
	Id         string      `params:"id"`
	Rule       string      `json:"rule"`
	Recipients []recipient `json:"recipients"`
}

func (r *replaceSnapshotRequest) Validate() error {
	var errList []error
	if r.Id == "" {
		errList = append(errList, errors.New("'id' is required"))
	}
	if len(r.Recipients) == 0 {
		errList = append(errList, errors.New("'recipients' must not be empty"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type replaceSnapshotResult struct {
	Id             string `json:"id"`
	RecipientCount int    `json:"recipientCount"`
}

type replaceSnapshotResponse = HttpResponse[replaceSnapshotResult]

// ReplaceSnapshot replaces an eligibility snapshot wholesale. Snapshots are
// immutable; there is no partial update endpoint.
func (h *HttpHandler) ReplaceSnapshot(ctx *fiber.Ctx) (err error) {
	var req replaceSnapshotRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	snapshot := &entity.Snapshot{
		Id:         req.Id,
		Rule:       req.Rule,
		Recipients: toEntityRecipients(req.Recipients),
		TakenAt:    time.Now(),
	}
	if err := h.usecase.ReplaceSnapshot(ctx.UserContext(), snapshot); err != nil {
		return errors.Wrap(err, "error during ReplaceSnapshot")
	}

	resp := replaceSnapshotResponse{
		Result: &replaceSnapshotResult{
			Id:             snapshot.Id,
			RecipientCount: len(snapshot.Recipients),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
