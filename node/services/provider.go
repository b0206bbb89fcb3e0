package services

import (
	"github.com/frostline/fc4tx/node/modules/keystore"
	"github.com/frostline/fc4tx/node/modules/logger"
	"github.com/frostline/fc4tx/node/modules/state"
	ceremony_service "github.com/frostline/fc4tx/node/services/ceremony"
	operation_service "github.com/frostline/fc4tx/node/services/operation"
	signature_service "github.com/frostline/fc4tx/node/services/signature"
	"github.com/frostline/fc4tx/storage"
)

type ServiceProvider struct {
	logger           logger.Logger
	state            state.State
	storage          storage.Storage
	keyStore         keystore.KeyStore
	ceremonyService  ceremony_service.CeremonyService
	operationService operation_service.OperationService
	signatureService signature_service.SignatureService
}

func (p *ServiceProvider) GetLogger() logger.Logger {
	return p.logger
}

func (p *ServiceProvider) SetLogger(logger logger.Logger) {
	p.logger = logger
}

func (p *ServiceProvider) SetState(state state.State) {
	p.state = state
}

func (p *ServiceProvider) SetStorage(storage storage.Storage) {
	p.storage = storage
}

func (p *ServiceProvider) SetKeyStore(keyStore keystore.KeyStore) {
	p.keyStore = keyStore
}

func (p *ServiceProvider) SetCeremonyService(ceremonyService ceremony_service.CeremonyService) {
	p.ceremonyService = ceremonyService
}

func (p *ServiceProvider) SetOperationService(operationService operation_service.OperationService) {
	p.operationService = operationService
}

func (p *ServiceProvider) SetSignatureService(signatureService signature_service.SignatureService) {
	p.signatureService = signatureService
}

func (p *ServiceProvider) GetState() state.State {
	return p.state
}

func (p *ServiceProvider) GetStorage() storage.Storage {
	return p.storage
}

func (p *ServiceProvider) GetKeyStore() keystore.KeyStore {
	return p.keyStore
}

func (p *ServiceProvider) GetCeremonyService() ceremony_service.CeremonyService {
	return p.ceremonyService
}

func (p *ServiceProvider) GetOperationService() operation_service.OperationService {
	return p.operationService
}

func (p *ServiceProvider) GetSignatureService() signature_service.SignatureService {
	return p.signatureService
}
