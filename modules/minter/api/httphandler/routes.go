package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/minter")

	r.Post("/plan", h.CreatePlan)

	r.Post("/runs", h.StartRun)
	r.Get("/runs/:id", h.GetRun)
	r.Post("/runs/:id/stop", h.StopRun)

	r.Get("/ledger", h.GetMintRecords)
	r.Get("/ledger/export", h.ExportMintRecords)

	r.Get("/policies", h.GetPolicies)
	r.Post("/policies", h.CreatePolicy)

	r.Get("/designs", h.GetDesigns)
	r.Get("/designs/:tokenType", h.GetDesign)
	r.Post("/designs", h.CreateDesign)
	r.Post("/designs/:tokenType/metadata", h.UploadMetadata)

	r.Get("/snapshots/:id", h.GetSnapshot)
	r.Put("/snapshots/:id", h.ReplaceSnapshot)
	return nil
}
