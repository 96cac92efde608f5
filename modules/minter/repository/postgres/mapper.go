package postgres

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

func marshalScript(script cardano.PolicyScript) ([]byte, error) {
	raw, err := json.Marshal(script)
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal policy script")
	}
	return raw, nil
}

func unmarshalScript(raw []byte) (cardano.PolicyScript, error) {
	script, err := cardano.ParsePolicyScript(raw)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse stored policy script")
	}
	return script, nil
}

func marshalTemplate(template []entity.TemplateField) ([]byte, error) {
	raw, err := json.Marshal(template)
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal metadata template")
	}
	return raw, nil
}

func unmarshalTemplate(raw []byte) ([]entity.TemplateField, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var template []entity.TemplateField
	if err := json.Unmarshal(raw, &template); err != nil {
		return nil, errors.Wrap(err, "can't parse stored metadata template")
	}
	return template, nil
}

func marshalAttributes(attributes []entity.TraitAttribute) ([]byte, error) {
	raw, err := json.Marshal(attributes)
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal custom attributes")
	}
	return raw, nil
}

func unmarshalAttributes(raw []byte) ([]entity.TraitAttribute, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var attributes []entity.TraitAttribute
	if err := json.Unmarshal(raw, &attributes); err != nil {
		return nil, errors.Wrap(err, "can't parse stored custom attributes")
	}
	return attributes, nil
}

func marshalRecipients(recipients []entity.Recipient) ([]byte, error) {
	raw, err := json.Marshal(recipients)
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal recipients")
	}
	return raw, nil
}

func unmarshalRecipients(raw []byte) ([]entity.Recipient, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var recipients []entity.Recipient
	if err := json.Unmarshal(raw, &recipients); err != nil {
		return nil, errors.Wrap(err, "can't parse stored recipients")
	}
	return recipients, nil
}
