package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
)

type uploadMetadataRequest struct {
	TokenType string `params:"tokenType"`
}

func (r *uploadMetadataRequest) Validate() error {
	var errList []error
	if r.TokenType == "" {
		errList = append(errList, errors.New("'tokenType' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type uploadMetadataResult struct {
	ContentId  string `json:"contentId"`
	NativeUrl  string `json:"nativeUrl"`
	GatewayUrl string `json:"gatewayUrl"`
}

type uploadMetadataResponse = HttpResponse[uploadMetadataResult]

// UploadMetadata publishes the design's metadata document to the configured
// blob store and returns its content-addressed URLs.
func (h *HttpHandler) UploadMetadata(ctx *fiber.Ctx) (err error) {
	var req uploadMetadataRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	object, err := h.usecase.UploadDesignMetadata(ctx.UserContext(), req.TokenType)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("design not found")
		}
		return errors.Wrap(err, "error during UploadDesignMetadata")
	}

	resp := uploadMetadataResponse{
		Result: &uploadMetadataResult{
			ContentId:  object.ContentId,
			NativeUrl:  object.NativeUrl,
			GatewayUrl: object.GatewayUrl,
		},
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(resp))
}
