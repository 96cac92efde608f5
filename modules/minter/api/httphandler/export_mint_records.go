package httphandler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/usecase"
	"github.com/samber/lo"
)

type exportMintRecordsRequest struct {
	Format    string `query:"format"`
	TokenType string `query:"tokenType"`
}

func (r *exportMintRecordsRequest) Validate() error {
	var errList []error
	if r.Format == "" {
		r.Format = usecase.ExportFormatCSV
	}
	if !lo.Contains([]string{usecase.ExportFormatCSV, usecase.ExportFormatParquet}, r.Format) {
		errList = append(errList, errors.Errorf("format %q is not supported", r.Format))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

var exportContentTypes = map[string]string{
	usecase.ExportFormatCSV:     "text/csv",
	usecase.ExportFormatParquet: "application/vnd.apache.parquet",
}

// ExportMintRecords streams the ledger as a file download. The export is
// buffered in memory before sending; ledgers here are console-scale, not
// chain-scale.
func (h *HttpHandler) ExportMintRecords(ctx *fiber.Ctx) (err error) {
	var req exportMintRecordsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	var buf bytes.Buffer
	if err := h.usecase.ExportLedger(ctx.UserContext(), req.Format, req.TokenType, &buf); err != nil {
		return errors.Wrap(err, "error during ExportLedger")
	}

	name := lo.Ternary(req.TokenType != "", req.TokenType, "ledger")
	filename := fmt.Sprintf("%s-%s.%s", name, time.Now().UTC().Format("20060102-150405"), req.Format)

	ctx.Set(fiber.HeaderContentType, exportContentTypes[req.Format])
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return errors.WithStack(ctx.Send(buf.Bytes()))
}
