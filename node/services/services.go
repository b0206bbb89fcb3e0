package services

import (
	"fmt"

	"github.com/frostline/fc4tx/node/config"
	"github.com/frostline/fc4tx/node/modules/keystore"
	"github.com/frostline/fc4tx/node/modules/logger"
	"github.com/frostline/fc4tx/node/modules/state"
	operation_repo "github.com/frostline/fc4tx/node/repositories/operation"
	signature_repo "github.com/frostline/fc4tx/node/repositories/signature"
	ceremony_service "github.com/frostline/fc4tx/node/services/ceremony"
	operation_service "github.com/frostline/fc4tx/node/services/operation"
	signature_service "github.com/frostline/fc4tx/node/services/signature"
	"github.com/frostline/fc4tx/storage"
	"github.com/frostline/fc4tx/storage/kafka_storage"
)

// InitServices wires the node's modules together: the leveldb state,
// the kafka append-only log, the keystore and the domain services.
func InitServices(cfg *config.Config) (*ServiceProvider, error) {
	keyStore, err := keystore.NewLevelDBKeyStore(cfg.Username, cfg.KeyStoreDBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init key store: %w", err)
	}

	stg, err := kafka_storage.NewKafkaStorage(
		cfg.KafkaStorageConfig.DBDSN,
		cfg.KafkaStorageConfig.Topic,
		cfg.KafkaStorageConfig.ConsumerGroup,
		cfg.KafkaStorageConfig.TlsConfig,
		cfg.KafkaStorageConfig.ProducerCredentials,
		cfg.KafkaStorageConfig.ConsumerCredentials,
		cfg.KafkaStorageConfig.Timeout,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage client: %w", err)
	}

	if err := stg.IgnoreMessages(
		cfg.KafkaStorageConfig.IgnoredMessages,
		cfg.KafkaStorageConfig.UseOffsetInsteadId,
	); err != nil {
		return nil, fmt.Errorf("failed to ignore messages in storage: %w", err)
	}

	st, err := state.NewLevelDBState(cfg.StateDBDSN, cfg.KafkaStorageConfig.Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to init state: %w", err)
	}

	return NewServiceProvider(cfg, st, stg, keyStore)
}

// NewServiceProvider builds the provider from already initialized
// modules. Tests use it to substitute in-memory fakes.
func NewServiceProvider(
	cfg *config.Config,
	st state.State,
	stg storage.Storage,
	keyStore keystore.KeyStore,
) (*ServiceProvider, error) {
	operationRepo, err := operation_repo.NewOperationRepo(st, cfg.KafkaStorageConfig.Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to init operation repo: %w", err)
	}

	signatureRepo := signature_repo.NewSignatureRepo(st)

	return &ServiceProvider{
		logger:           logger.NewLogger(cfg.Username),
		state:            st,
		storage:          stg,
		keyStore:         keyStore,
		ceremonyService:  ceremony_service.NewCeremonyService(st, stg, cfg.KafkaStorageConfig.Topic),
		operationService: operation_service.NewOperationService(operationRepo),
		signatureService: signature_service.NewSignatureService(signatureRepo),
	}, nil
}
