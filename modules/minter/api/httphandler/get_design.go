package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
)

type getDesignRequest struct {
	TokenType string `params:"tokenType"`
}

func (r *getDesignRequest) Validate() error {
	var errList []error
	if r.TokenType == "" {
		errList = append(errList, errors.New("'tokenType' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getDesignResult struct {
	Design      design `json:"design"`
	MintedCount uint64 `json:"mintedCount"`
}

type getDesignResponse = HttpResponse[getDesignResult]

func (h *HttpHandler) GetDesign(ctx *fiber.Ctx) (err error) {
	var req getDesignRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	d, err := h.usecase.GetDesign(ctx.UserContext(), req.TokenType)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("design not found")
		}
		return errors.Wrap(err, "error during GetDesign")
	}
	mintedCount, err := h.usecase.CountMintRecords(ctx.UserContext(), req.TokenType)
	if err != nil {
		return errors.Wrap(err, "error during CountMintRecords")
	}

	resp := getDesignResponse{
		Result: &getDesignResult{
			Design:      toDesign(d),
			MintedCount: mintedCount,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
