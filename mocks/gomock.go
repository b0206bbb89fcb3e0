package mocks

//go:generate mockgen -source=./../node/modules/state/state.go -destination=./nodeMocks/state_mock.go -package=nodeMocks
//go:generate mockgen -source=./../node/modules/keystore/keystore.go -destination=./nodeMocks/keystore_mock.go -package=nodeMocks
//go:generate mockgen -source=./../storage/types.go -destination=./storageMocks/storage_mock.go -package=storageMocks
//go:generate mockgen -source=./../node/services/ceremony/ceremony_service.go -destination=./serviceMocks/ceremony_mock.go -package=serviceMocks
//go:generate mockgen -source=./../node/services/operation/operation.go -destination=./serviceMocks/operation_mock.go -package=serviceMocks
//go:generate mockgen -source=./../node/services/signature/signature.go -destination=./serviceMocks/signature_mock.go -package=serviceMocks
