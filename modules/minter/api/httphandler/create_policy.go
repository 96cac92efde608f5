package httphandler

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

type createPolicyRequest struct {
	Name             string          `json:"name"`
	Notes            string          `json:"notes"`
	Script           json.RawMessage `json:"script"`
	ExpiryDate       *int64          `json:"expiryDate"` // unix timestamp
	RoyaltyAddress   string          `json:"royaltyAddress"`
	RoyaltyPercent   float64         `json:"royaltyPercent"`
	MetadataTemplate []templateField `json:"metadataTemplate"`
}

func (r *createPolicyRequest) Validate() error {
	var errList []error
	if r.Name == "" {
		errList = append(errList, errors.New("'name' is required"))
	}
	if len(r.Script) == 0 {
		errList = append(errList, errors.New("'script' is required"))
	}
	if r.RoyaltyPercent < 0 || r.RoyaltyPercent > 100 {
		errList = append(errList, errors.New("'royaltyPercent' must be between 0 and 100"))
	}
	for _, field := range r.MetadataTemplate {
		kind := entity.TemplateFieldKind(field.Kind)
		if kind != entity.TemplateFieldFixed && kind != entity.TemplateFieldPlaceholder {
			errList = append(errList, errors.Errorf("template field %q has unknown kind %q", field.Name, field.Kind))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createPolicyResult struct {
	PolicyId string `json:"policyId"`
}

type createPolicyResponse = HttpResponse[createPolicyResult]

func (h *HttpHandler) CreatePolicy(ctx *fiber.Ctx) (err error) {
	var req createPolicyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	if req.RoyaltyAddress != "" {
		if _, err := cardano.DecodeAddress(req.RoyaltyAddress, h.network); err != nil {
			return errs.NewPublicError("royalty address is not valid for this network")
		}
	}

	script, err := cardano.ParsePolicyScript(req.Script)
	if err != nil {
		return errs.WithPublicMessage(err, "invalid policy script")
	}
	policyId, err := cardano.PolicyIDFor(script)
	if err != nil {
		return errors.Wrap(err, "can't derive policy id")
	}

	template := make([]entity.TemplateField, 0, len(req.MetadataTemplate))
	for _, field := range req.MetadataTemplate {
		template = append(template, entity.TemplateField{
			Name:       field.Name,
			Kind:       entity.TemplateFieldKind(field.Kind),
			FixedValue: field.FixedValue,
		})
	}

	now := time.Now()
	newPolicy := &entity.Policy{
		PolicyId:         policyId,
		Name:             req.Name,
		Notes:            req.Notes,
		Script:           script,
		RoyaltyAddress:   req.RoyaltyAddress,
		RoyaltyPercent:   req.RoyaltyPercent,
		MetadataTemplate: template,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.ExpiryDate != nil {
		expiry := time.Unix(*req.ExpiryDate, 0).UTC()
		newPolicy.ExpiryDate = &expiry
	}

	if err := h.usecase.CreatePolicy(ctx.UserContext(), newPolicy); err != nil {
		return errors.Wrap(err, "error during CreatePolicy")
	}

	resp := createPolicyResponse{
		Result: &createPolicyResult{PolicyId: policyId.String()},
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(resp))
}
