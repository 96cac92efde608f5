package httphandler

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/modules/minter/entity"
)

type templateField struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	FixedValue string `json:"fixedValue,omitempty"`
}

type policy struct {
	PolicyId         string          `json:"policyId"`
	Name             string          `json:"name"`
	Notes            string          `json:"notes,omitempty"`
	Script           json.RawMessage `json:"script"`
	ExpiryDate       *int64          `json:"expiryDate,omitempty"` // unix timestamp
	RoyaltyAddress   string          `json:"royaltyAddress,omitempty"`
	RoyaltyPercent   float64         `json:"royaltyPercent,omitempty"`
	MetadataTemplate []templateField `json:"metadataTemplate"`
	CreatedAt        int64           `json:"createdAt"` // unix timestamp
}

func toPolicy(p *entity.Policy) (policy, error) {
	script, err := json.Marshal(p.Script)
	if err != nil {
		return policy{}, errors.Wrap(err, "can't marshal policy script")
	}
	template := make([]templateField, 0, len(p.MetadataTemplate))
	for _, field := range p.MetadataTemplate {
		template = append(template, templateField{
			Name:       field.Name,
			Kind:       string(field.Kind),
			FixedValue: field.FixedValue,
		})
	}
	out := policy{
		PolicyId:         p.PolicyId.String(),
		Name:             p.Name,
		Notes:            p.Notes,
		Script:           script,
		RoyaltyAddress:   p.RoyaltyAddress,
		RoyaltyPercent:   p.RoyaltyPercent,
		MetadataTemplate: template,
		CreatedAt:        p.CreatedAt.Unix(),
	}
	if p.ExpiryDate != nil {
		expiry := p.ExpiryDate.Unix()
		out.ExpiryDate = &expiry
	}
	return out, nil
}

type getPoliciesResult struct {
	Policies []policy `json:"policies"`
}

type getPoliciesResponse = HttpResponse[getPoliciesResult]

func (h *HttpHandler) GetPolicies(ctx *fiber.Ctx) (err error) {
	policies, err := h.usecase.GetPolicies(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetPolicies")
	}

	result := getPoliciesResult{
		Policies: make([]policy, 0, len(policies)),
	}
	for _, p := range policies {
		item, err := toPolicy(p)
		if err != nil {
			return errors.WithStack(err)
		}
		result.Policies = append(result.Policies, item)
	}

	resp := getPoliciesResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
