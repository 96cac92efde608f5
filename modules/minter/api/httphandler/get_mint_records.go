package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
)

const (
	defaultMintRecordsLimit = 100
	maxMintRecordsLimit     = 1000
)

type getMintRecordsRequest struct {
	TokenType string `query:"tokenType"`
	Limit     int32  `query:"limit"`
	Offset    int64  `query:"offset"`
}

func (r *getMintRecordsRequest) Validate() error {
	var errList []error
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must not be negative"))
	}
	if r.Limit > maxMintRecordsLimit {
		errList = append(errList, errors.Errorf("'limit' must not exceed %d", maxMintRecordsLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must not be negative"))
	}
	if r.Limit == 0 {
		r.Limit = defaultMintRecordsLimit
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type mintRecord struct {
	Id            string `json:"id"`
	TokenType     string `json:"tokenType"`
	MintNumber    uint64 `json:"mintNumber"`
	PolicyId      string `json:"policyId"`
	AssetName     string `json:"assetName"`
	AssetId       string `json:"assetId"`
	RecipientAddr string `json:"recipientAddress"`
	RecipientName string `json:"recipientName,omitempty"`
	BatchNumber   int    `json:"batchNumber"`
	TxHash        string `json:"txHash"`
	Network       string `json:"network"`
	Status        string `json:"status"`
	MintedAt      int64  `json:"mintedAt"` // unix timestamp
}

type getMintRecordsResult struct {
	Records []mintRecord `json:"records"`
	Total   uint64       `json:"total"`
}

type getMintRecordsResponse = HttpResponse[getMintRecordsResult]

func (h *HttpHandler) GetMintRecords(ctx *fiber.Ctx) (err error) {
	var req getMintRecordsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	records, err := h.usecase.GetMintRecords(ctx.UserContext(), req.TokenType, req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetMintRecords")
	}
	total, err := h.usecase.CountMintRecords(ctx.UserContext(), req.TokenType)
	if err != nil {
		return errors.Wrap(err, "error during CountMintRecords")
	}

	result := getMintRecordsResult{
		Records: make([]mintRecord, 0, len(records)),
		Total:   total,
	}
	for _, record := range records {
		result.Records = append(result.Records, toMintRecord(record))
	}

	resp := getMintRecordsResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}

func toMintRecord(record *entity.MintRecord) mintRecord {
	return mintRecord{
		Id:            record.Id,
		TokenType:     record.TokenType,
		MintNumber:    record.MintNumber,
		PolicyId:      record.PolicyId,
		AssetName:     record.AssetName,
		AssetId:       record.AssetId,
		RecipientAddr: record.RecipientAddr,
		RecipientName: record.RecipientName,
		BatchNumber:   record.BatchNumber,
		TxHash:        record.TxHash,
		Network:       record.Network.String(),
		Status:        string(record.Status),
		MintedAt:      record.MintedAt.Unix(),
	}
}
