package firestore

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

type policyModel struct {
	PolicyId         string                 `firestore:"policyId"`
	Name             string                 `firestore:"name"`
	Notes            string                 `firestore:"notes"`
	Script           string                 `firestore:"script"` // policy script JSON
	ExpiryDate       *time.Time             `firestore:"expiryDate"`
	RoyaltyAddress   string                 `firestore:"royaltyAddress"`
	RoyaltyPercent   float64                `firestore:"royaltyPercent"`
	MetadataTemplate []templateFieldModel   `firestore:"metadataTemplate"`
	CreatedAt        time.Time              `firestore:"createdAt"`
	UpdatedAt        time.Time              `firestore:"updatedAt"`
}

type templateFieldModel struct {
	Name       string `firestore:"name"`
	Kind       string `firestore:"kind"`
	FixedValue string `firestore:"fixedValue"`
}

func mapPolicyToModel(policy *entity.Policy) (policyModel, error) {
	scriptRaw, err := json.Marshal(policy.Script)
	if err != nil {
		return policyModel{}, errors.Wrap(err, "can't marshal policy script")
	}
	template := make([]templateFieldModel, 0, len(policy.MetadataTemplate))
	for _, field := range policy.MetadataTemplate {
		template = append(template, templateFieldModel{
			Name:       field.Name,
			Kind:       string(field.Kind),
			FixedValue: field.FixedValue,
		})
	}
	return policyModel{
		PolicyId:         policy.PolicyId.String(),
		Name:             policy.Name,
		Notes:            policy.Notes,
		Script:           string(scriptRaw),
		ExpiryDate:       policy.ExpiryDate,
		RoyaltyAddress:   policy.RoyaltyAddress,
		RoyaltyPercent:   policy.RoyaltyPercent,
		MetadataTemplate: template,
		CreatedAt:        policy.CreatedAt,
		UpdatedAt:        policy.UpdatedAt,
	}, nil
}

func mapModelToPolicy(model policyModel) (*entity.Policy, error) {
	policyId, err := cardano.NewPolicyIDFromHex(model.PolicyId)
	if err != nil {
		return nil, errors.Wrap(err, "stored policy id is unusable")
	}
	script, err := cardano.ParsePolicyScript([]byte(model.Script))
	if err != nil {
		return nil, errors.Wrap(err, "can't parse stored policy script")
	}
	template := make([]entity.TemplateField, 0, len(model.MetadataTemplate))
	for _, field := range model.MetadataTemplate {
		template = append(template, entity.TemplateField{
			Name:       field.Name,
			Kind:       entity.TemplateFieldKind(field.Kind),
			FixedValue: field.FixedValue,
		})
	}
	return &entity.Policy{
		PolicyId:         policyId,
		Name:             model.Name,
		Notes:            model.Notes,
		Script:           script,
		ExpiryDate:       model.ExpiryDate,
		RoyaltyAddress:   model.RoyaltyAddress,
		RoyaltyPercent:   model.RoyaltyPercent,
		MetadataTemplate: template,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}, nil
}

type designModel struct {
	TokenType        string                `firestore:"tokenType"`
	DisplayName      string                `firestore:"displayName"`
	Description      string                `firestore:"description"`
	ImageUrl         string                `firestore:"imageUrl"`
	MediaType        string                `firestore:"mediaType"`
	AssetNamePrefix  string                `firestore:"assetNamePrefix"`
	PolicyId         string                `firestore:"policyId"`
	CustomAttributes []traitAttributeModel `firestore:"customAttributes"`
	TotalMinted      int64                 `firestore:"totalMinted"`
	CreatedAt        time.Time             `firestore:"createdAt"`
	UpdatedAt        time.Time             `firestore:"updatedAt"`
}

type traitAttributeModel struct {
	TraitType string `firestore:"traitType"`
	Value     string `firestore:"value"`
}

func mapDesignToModel(design *entity.Design) designModel {
	attributes := make([]traitAttributeModel, 0, len(design.CustomAttributes))
	for _, attr := range design.CustomAttributes {
		attributes = append(attributes, traitAttributeModel{TraitType: attr.TraitType, Value: attr.Value})
	}
	return designModel{
		TokenType:        design.TokenType,
		DisplayName:      design.DisplayName,
		Description:      design.Description,
		ImageUrl:         design.ImageUrl,
		MediaType:        design.MediaType,
		AssetNamePrefix:  design.AssetNamePrefix,
		PolicyId:         design.PolicyId.String(),
		CustomAttributes: attributes,
		TotalMinted:      int64(design.TotalMinted),
		CreatedAt:        design.CreatedAt,
		UpdatedAt:        design.UpdatedAt,
	}
}

func mapModelToDesign(model designModel) (*entity.Design, error) {
	policyId, err := cardano.NewPolicyIDFromHex(model.PolicyId)
	if err != nil {
		return nil, errors.Wrap(err, "stored policy id is unusable")
	}
	attributes := make([]entity.TraitAttribute, 0, len(model.CustomAttributes))
	for _, attr := range model.CustomAttributes {
		attributes = append(attributes, entity.TraitAttribute{TraitType: attr.TraitType, Value: attr.Value})
	}
	return &entity.Design{
		TokenType:        model.TokenType,
		DisplayName:      model.DisplayName,
		Description:      model.Description,
		ImageUrl:         model.ImageUrl,
		MediaType:        model.MediaType,
		AssetNamePrefix:  model.AssetNamePrefix,
		PolicyId:         policyId,
		CustomAttributes: attributes,
		TotalMinted:      uint64(model.TotalMinted),
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}, nil
}

type snapshotModel struct {
	Id         string           `firestore:"id"`
	Rule       string           `firestore:"rule"`
	Recipients []recipientModel `firestore:"recipients"`
	TakenAt    time.Time        `firestore:"takenAt"`
}

type recipientModel struct {
	Address     string `firestore:"address"`
	DisplayName string `firestore:"displayName"`
}

func mapSnapshotToModel(snapshot *entity.Snapshot) snapshotModel {
	recipients := make([]recipientModel, 0, len(snapshot.Recipients))
	for _, recipient := range snapshot.Recipients {
		recipients = append(recipients, recipientModel{Address: recipient.Address, DisplayName: recipient.DisplayName})
	}
	return snapshotModel{
		Id:         snapshot.Id,
		Rule:       snapshot.Rule,
		Recipients: recipients,
		TakenAt:    snapshot.TakenAt,
	}
}

func mapModelToSnapshot(model snapshotModel) *entity.Snapshot {
	recipients := make([]entity.Recipient, 0, len(model.Recipients))
	for _, recipient := range model.Recipients {
		recipients = append(recipients, entity.Recipient{Address: recipient.Address, DisplayName: recipient.DisplayName})
	}
	return &entity.Snapshot{
		Id:         model.Id,
		Rule:       model.Rule,
		Recipients: recipients,
		TakenAt:    model.TakenAt,
	}
}

type mintRecordModel struct {
	Id            string    `firestore:"id"`
	TokenType     string    `firestore:"tokenType"`
	MintNumber    int64     `firestore:"mintNumber"`
	PolicyId      string    `firestore:"policyId"`
	AssetName     string    `firestore:"assetName"`
	AssetId       string    `firestore:"assetId"`
	RecipientAddr string    `firestore:"recipientAddress"`
	RecipientName string    `firestore:"recipientName"`
	BatchNumber   int       `firestore:"batchNumber"`
	TxHash        string    `firestore:"txHash"`
	Network       string    `firestore:"network"`
	Status        string    `firestore:"status"`
	MintedAt      time.Time `firestore:"mintedAt"`
	CreatedAt     time.Time `firestore:"createdAt"`
}

func mapMintRecordToModel(record *entity.MintRecord) mintRecordModel {
	return mintRecordModel{
		Id:            record.Id,
		TokenType:     record.TokenType,
		MintNumber:    int64(record.MintNumber),
		PolicyId:      record.PolicyId,
		AssetName:     record.AssetName,
		AssetId:       record.AssetId,
		RecipientAddr: record.RecipientAddr,
		RecipientName: record.RecipientName,
		BatchNumber:   record.BatchNumber,
		TxHash:        record.TxHash,
		Network:       record.Network.String(),
		Status:        string(record.Status),
		MintedAt:      record.MintedAt,
		CreatedAt:     record.CreatedAt,
	}
}

func mapModelToMintRecord(model mintRecordModel) *entity.MintRecord {
	return &entity.MintRecord{
		Id:            model.Id,
		TokenType:     model.TokenType,
		MintNumber:    uint64(model.MintNumber),
		PolicyId:      model.PolicyId,
		AssetName:     model.AssetName,
		AssetId:       model.AssetId,
		RecipientAddr: model.RecipientAddr,
		RecipientName: model.RecipientName,
		BatchNumber:   model.BatchNumber,
		TxHash:        model.TxHash,
		Network:       common.Network(model.Network),
		Status:        entity.MintStatus(model.Status),
		MintedAt:      model.MintedAt,
		CreatedAt:     model.CreatedAt,
	}
}
