package participant

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"lukechampine.com/frand"

	"github.com/frostline/fc4tx/fsm/fsm"
	scf "github.com/frostline/fc4tx/fsm/state_machines/signing_ceremony_fsm"
	"github.com/frostline/fc4tx/fsm/types/requests"
	"github.com/frostline/fc4tx/node/types"
	"github.com/frostline/fc4tx/storage"
)

const (
	seedSize = 32
)

// Machine keeps a participant's long-lived key shares and one-shot
// signing nonces on its own side of the trust boundary. It consumes
// operations produced by the node and returns signed ceremony messages
// without ever exposing secret material.
type Machine struct {
	sync.Mutex

	username string

	// Used to encrypt local sensitive data, e.g. key shares.
	encryptionKey []byte
	baseSeed      []byte

	rand io.Reader
	db   *leveldb.DB
}

func NewMachine(dbPath, username string) (*Machine, error) {
	var (
		err error
	)

	m := &Machine{
		username: username,
		rand:     frand.Reader,
	}

	if m.db, err = leveldb.OpenFile(dbPath, nil); err != nil {
		return nil, fmt.Errorf("failed to open db file %s for keys: %w", dbPath, err)
	}

	if err := m.loadBaseSeed(); err != nil {
		return nil, fmt.Errorf("failed to loadBaseSeed: %w", err)
	}

	if err := m.ensureSalt(); err != nil {
		return nil, fmt.Errorf("failed to ensureSalt: %w", err)
	}

	if _, err = m.db.Get([]byte(operationsLogDBKey), nil); err != nil {
		if err == leveldb.ErrNotFound {
			operationsLogBz, _ := json.Marshal(CeremonyOperationLog{})
			if err := m.db.Put([]byte(operationsLogDBKey), operationsLogBz, nil); err != nil {
				return nil, fmt.Errorf("failed to init operation log: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to init operation log (fatal): %w", err)
		}
	}

	return m, nil
}

func (m *Machine) Username() string {
	return m.username
}

// SetEncryptionKey set a key to encrypt and decrypt sensitive data.
func (m *Machine) SetEncryptionKey(key []byte) {
	m.encryptionKey = key
}

// SensitiveDataRemoved indicates whether sensitive information has been cleared
func (m *Machine) SensitiveDataRemoved() bool {
	return len(m.encryptionKey) == 0
}

// DropSensitiveData remove sensitive data from memory
func (m *Machine) DropSensitiveData() {
	m.Lock()
	defer m.Unlock()

	// There is no guarantee that GC actually deleted a data from memory, but that's ok at this moment
	m.encryptionKey = nil
}

// ReplayOperationsLog reprocesses every stored operation of a ceremony,
// e.g. after the machine database was restored from a mnemonic.
func (m *Machine) ReplayOperationsLog(ceremonyID string) error {
	operationsLog, err := m.getOperationsLog(ceremonyID)
	if err != nil {
		return fmt.Errorf("failed to getOperationsLog: %w", err)
	}

	for idx, operation := range operationsLog {
		if _, err := m.ProcessOperation(operation, false); err != nil {
			return fmt.Errorf("failed to ProcessOperation %d: %w", idx, err)
		}
	}

	log.Println("Successfully replayed operation log")

	return nil
}

func (m *Machine) DropOperationsLog(ceremonyID string) error {
	return m.dropCeremonyOperationLog(ceremonyID)
}

func (m *Machine) ProcessOperation(operation types.Operation, storeOperation bool) (types.Operation, error) {
	resultOperation, err := m.GetOperationResult(operation)
	if err != nil {
		return resultOperation, fmt.Errorf(
			"failed to handle operation %s (this error is fatal): %w",
			operation.ID, err)
	}

	if storeOperation {
		if err := m.storeOperation(operation); err != nil {
			return resultOperation, fmt.Errorf("failed to storeOperation: %w", err)
		}
	}

	return resultOperation, nil
}

func (m *Machine) GetOperationResult(operation types.Operation) (types.Operation, error) {
	var (
		err error
	)

	// handler gets a pointer to an operation, do necessary things
	// and write result messages to the operation
	switch operation.Type {
	case types.CommitmentAwait:
		err = m.handleCommitmentAwait(&operation)
	case types.PartialSignatureAwait:
		err = m.handlePartialSignatureAwait(&operation)
	default:
		err = fmt.Errorf("invalid operation type: %s", operation.Type)
	}

	// if we have error after handling the operation, we write the error to the operation, so we can feed it to a FSM
	if err != nil {
		log.Printf("failed to handle operation %s, returning response with error to node: %v",
			operation.Type, err)
		if e := m.writeErrorRequestToOperation(&operation, err); e != nil {
			return operation, fmt.Errorf("failed to write error request to an operation: %w", e)
		}
	}

	return operation, nil
}

func createMessage(o types.Operation, data []byte) storage.Message {
	return storage.Message{
		Event:         string(o.Event),
		Data:          data,
		CeremonyID:    o.CeremonyID,
		RecipientAddr: o.To,
	}
}

// writeErrorRequestToOperation writes error to a operation if some bad things happened
func (m *Machine) writeErrorRequestToOperation(o *types.Operation, handlerError error) error {
	eventToErrorMap := map[types.OperationType]fsm.Event{
		types.CommitmentAwait:       scf.EventCeremonyCommitmentError,
		types.PartialSignatureAwait: scf.EventCeremonyPartialSignatureError,
	}
	errorEvent, ok := eventToErrorMap[o.Type]
	if !ok {
		return fmt.Errorf("no error event for operation type %s", o.Type)
	}

	req := requests.CeremonyConfirmationErrorRequest{
		CeremonyID:    o.CeremonyID,
		ParticipantID: m.username,
		Error:         handlerError.Error(),
		CreatedAt:     o.CreatedAt,
	}
	reqBz, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to generate fsm request: %w", err)
	}
	o.Event = errorEvent
	o.ResultMsgs = append(o.ResultMsgs, createMessage(*o, reqBz))
	return nil
}
