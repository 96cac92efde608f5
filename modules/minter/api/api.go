package api

import (
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/modules/minter/api/httphandler"
	"github.com/questline/mint-console/modules/minter/usecase"
)

func NewHTTPHandler(network common.Network, usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(network, usecase)
}
