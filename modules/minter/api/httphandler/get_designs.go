package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/modules/minter/entity"
)

type traitAttribute struct {
	TraitType string `json:"traitType"`
	Value     string `json:"value"`
}

type design struct {
	TokenType        string           `json:"tokenType"`
	DisplayName      string           `json:"displayName"`
	Description      string           `json:"description,omitempty"`
	ImageUrl         string           `json:"imageUrl"`
	MediaType        string           `json:"mediaType"`
	AssetNamePrefix  string           `json:"assetNamePrefix"`
	PolicyId         string           `json:"policyId"`
	CustomAttributes []traitAttribute `json:"customAttributes"`
	TotalMinted      uint64           `json:"totalMinted"`
	CreatedAt        int64            `json:"createdAt"` // unix timestamp
}

func toDesign(d *entity.Design) design {
	attributes := make([]traitAttribute, 0, len(d.CustomAttributes))
	for _, attr := range d.CustomAttributes {
		attributes = append(attributes, traitAttribute{TraitType: attr.TraitType, Value: attr.Value})
	}
	return design{
		TokenType:        d.TokenType,
		DisplayName:      d.DisplayName,
		Description:      d.Description,
		ImageUrl:         d.ImageUrl,
		MediaType:        d.MediaType,
		AssetNamePrefix:  d.AssetNamePrefix,
		PolicyId:         d.PolicyId.String(),
		CustomAttributes: attributes,
		TotalMinted:      d.TotalMinted,
		CreatedAt:        d.CreatedAt.Unix(),
	}
}

type getDesignsResult struct {
	Designs []design `json:"designs"`
}

type getDesignsResponse = HttpResponse[getDesignsResult]

func (h *HttpHandler) GetDesigns(ctx *fiber.Ctx) (err error) {
	designs, err := h.usecase.GetDesigns(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetDesigns")
	}

	result := getDesignsResult{
		Designs: make([]design, 0, len(designs)),
	}
	for _, d := range designs {
		result.Designs = append(result.Designs, toDesign(d))
	}

	resp := getDesignsResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
