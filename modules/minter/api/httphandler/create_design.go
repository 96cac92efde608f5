package httphandler

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

type createDesignRequest struct {
	TokenType        string           `json:"tokenType"`
	DisplayName      string           `json:"displayName"`
	Description      string           `json:"description"`
	ImageUrl         string           `json:"imageUrl"`
	MediaType        string           `json:"mediaType"`
	AssetNamePrefix  string           `json:"assetNamePrefix"`
	PolicyId         string           `json:"policyId"`
	CustomAttributes []traitAttribute `json:"customAttributes"`
}

func (r *createDesignRequest) Validate() error {
	var errList []error
	if r.TokenType == "" {
		errList = append(errList, errors.New("'tokenType' is required"))
	}
	if r.DisplayName == "" {
		errList = append(errList, errors.New("'displayName' is required"))
	}
	if r.ImageUrl == "" {
		errList = append(errList, errors.New("'imageUrl' is required"))
	}
	if r.MediaType == "" {
		errList = append(errList, errors.New("'mediaType' is required"))
	}
	if r.AssetNamePrefix == "" {
		errList = append(errList, errors.New("'assetNamePrefix' is required"))
	}
	if _, err := cardano.NewPolicyIDFromHex(r.PolicyId); err != nil {
		errList = append(errList, errors.Errorf("policy id %q is not valid", r.PolicyId))
	}
	// the prefix must leave room for plausible mint numbers
	if name := fmt.Sprintf("%s%d", r.AssetNamePrefix, 1_000_000); len(name) > cardano.MaxAssetNameLength {
		errList = append(errList, errors.Errorf("'assetNamePrefix' %q is too long for asset names", r.AssetNamePrefix))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createDesignResult struct {
	TokenType string `json:"tokenType"`
}

type createDesignResponse = HttpResponse[createDesignResult]

func (h *HttpHandler) CreateDesign(ctx *fiber.Ctx) (err error) {
	var req createDesignRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	policyId, err := cardano.NewPolicyIDFromHex(req.PolicyId)
	if err != nil {
		return errs.WithPublicMessage(err, "invalid policy id")
	}

	attributes := make([]entity.TraitAttribute, 0, len(req.CustomAttributes))
	for _, attr := range req.CustomAttributes {
		attributes = append(attributes, entity.TraitAttribute{TraitType: attr.TraitType, Value: attr.Value})
	}

	now := time.Now()
	newDesign := &entity.Design{
		TokenType:        req.TokenType,
		DisplayName:      req.DisplayName,
		Description:      req.Description,
		ImageUrl:         req.ImageUrl,
		MediaType:        req.MediaType,
		AssetNamePrefix:  req.AssetNamePrefix,
		PolicyId:         policyId,
		CustomAttributes: attributes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.usecase.CreateDesign(ctx.UserContext(), newDesign); err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("policy not found")
		}
		return errors.Wrap(err, "error during CreateDesign")
	}

	resp := createDesignResponse{
		Result: &createDesignResult{TokenType: req.TokenType},
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(resp))
}
