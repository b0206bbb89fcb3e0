package router

import (
	"github.com/labstack/echo/v4"

	"github.com/frostline/fc4tx/node/api/http_api/handlers"
	"github.com/frostline/fc4tx/node/services"
	"github.com/frostline/fc4tx/node/services/node"
)

func SetRouter(e *echo.Echo, node node.NodeService, sp *services.ServiceProvider) {
	h := handlers.NewHTTPApp(node, sp)

	e.GET("/getUsername", h.GetUsername)
	e.GET("/getPubKey", h.GetPubKey)

	e.POST("/sendMessage", h.SendMessage)
	e.GET("/getOperations", h.GetOperations)
	e.GET("/getOperation", h.GetOperation)
	e.POST("/handleProcessedOperationJSON", h.ProcessOperation)

	e.POST("/startCeremony", h.StartCeremony)
	e.POST("/postCommitment", h.PostCommitment)
	e.POST("/buildSigningPackage", h.BuildSigningPackage)
	e.POST("/postPartialSignature", h.PostPartialSignature)
	e.GET("/getSignature", h.GetSignature)
	e.GET("/getSignatures", h.GetSignatures)

	e.POST("/saveOffset", h.SaveStateOffset)
	e.GET("/getOffset", h.GetStateOffset)

	e.GET("/getFSMDump", h.GetFSMDump)
	e.GET("/getFSMList", h.GetFSMList)

	e.POST("/resetState", h.ResetState)
}
