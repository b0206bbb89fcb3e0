package handlers

import (
	"github.com/frostline/fc4tx/node/modules/state"
	"github.com/frostline/fc4tx/node/services"
	ceremony_service "github.com/frostline/fc4tx/node/services/ceremony"
	"github.com/frostline/fc4tx/node/services/node"
	operation_service "github.com/frostline/fc4tx/node/services/operation"
	signature_service "github.com/frostline/fc4tx/node/services/signature"
)

type HTTPApp struct {
	node      node.NodeService
	ceremony  ceremony_service.CeremonyService
	state     state.State
	operation operation_service.OperationService
	signature signature_service.SignatureService
}

func NewHTTPApp(node node.NodeService, sp *services.ServiceProvider) *HTTPApp {
	return &HTTPApp{
		node:      node,
		ceremony:  sp.GetCeremonyService(),
		state:     sp.GetState(),
		operation: sp.GetOperationService(),
		signature: sp.GetSignatureService(),
	}
}
