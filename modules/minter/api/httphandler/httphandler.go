package httphandler

import (
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/modules/minter/usecase"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	network common.Network
}

func New(network common.Network, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		network: network,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

// recipient is the wire form of one snapshot entry, shared by plan, run and
// snapshot endpoints.
type recipient struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName"`
}

func toEntityRecipients(in []recipient) []entity.Recipient {
	out := make([]entity.Recipient, 0, len(in))
	for _, r := range in {
		out = append(out, entity.Recipient{Address: r.Address, DisplayName: r.DisplayName})
	}
	return out
}

func fromEntityRecipients(in []entity.Recipient) []recipient {
	out := make([]recipient, 0, len(in))
	for _, r := range in {
		out = append(out, recipient{Address: r.Address, DisplayName: r.DisplayName})
	}
	return out
}
