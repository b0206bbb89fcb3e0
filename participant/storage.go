package participant

import (
	"crypto/sha512"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"

	"github.com/frostline/fc4tx/frost"
	"github.com/frostline/fc4tx/node/types"
)

const (
	saltDBKey          = "salt_key"
	baseSeedKey        = "base_seed_key"
	operationsLogDBKey = "operations_log"
	keySharePrefix     = "key_share"
	signingNoncePrefix = "signing_nonce"
	mnemonicSalt       = "mnemonic"
)

type CeremonyOperationLog map[string][]types.Operation

func makeKeyShareDBKey(ceremonyID string) string {
	return fmt.Sprintf("%s_%s", keySharePrefix, ceremonyID)
}

func makeSigningNonceDBKey(ceremonyID string) string {
	return fmt.Sprintf("%s_%s", signingNoncePrefix, ceremonyID)
}

func (m *Machine) loadBaseSeed() error {
	seed, err := m.getBaseSeed()
	if errors.Is(err, leveldb.ErrNotFound) {
		log.Println("Base seed not initialized, making a new one...")
		entropy, err := bip39.NewEntropy(256) //maximum
		if err != nil {
			return fmt.Errorf("failed to generate bip39 entropy: %w", err)
		}

		mnemonic, err := bip39.NewMnemonic(entropy)
		if err != nil {
			return fmt.Errorf("failed to generate new mnemonic from entropy: %w", err)
		}

		seed = pbkdf2.Key([]byte(mnemonic), []byte(mnemonicSalt), 2048, seedSize, sha512.New)

		if err := m.storeBaseSeed(seed); err != nil {
			return fmt.Errorf("failed to storeBaseSeed: %w", err)
		}

		log.Println("Successfully generated a new seed")
		log.Println("Write down your mnemonic: ", mnemonic)
	} else if err != nil {
		return fmt.Errorf("failed to getBaseSeed: %w", err)
	}

	m.baseSeed = seed

	return nil
}

// SetBaseSeed restores the machine seed from a saved mnemonic.
func (m *Machine) SetBaseSeed(mnemonic string) error {
	_, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return fmt.Errorf("failed to validate mnemonic: %w", err)
	}
	seed := pbkdf2.Key([]byte(mnemonic), []byte(mnemonicSalt), 2048, seedSize, sha512.New)

	if err := m.storeBaseSeed(seed); err != nil {
		return fmt.Errorf("failed to storeBaseSeed: %w", err)
	}

	m.baseSeed = seed

	log.Println("Successfully set a base seed")

	return nil
}

func (m *Machine) storeBaseSeed(seed []byte) error {
	if err := m.db.Put([]byte(baseSeedKey), seed, nil); err != nil {
		return fmt.Errorf("failed to put baseSeed: %w", err)
	}

	return nil
}

func (m *Machine) getBaseSeed() ([]byte, error) {
	seed, err := m.db.Get([]byte(baseSeedKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get baseSeed: %w", err)
	}

	return seed, nil
}

func (m *Machine) getSalt() ([]byte, error) {
	salt, err := m.db.Get([]byte(saltDBKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read salt from db: %w", err)
	}
	return salt, nil
}

// keyShareWire is the storable form of a key share. Scalars and points
// are kept in their binary marshaling.
type keyShareWire struct {
	Name     string `json:"name"`
	ID       []byte `json:"id"`
	Secret   []byte `json:"secret"`
	Public   []byte `json:"public"`
	GroupKey []byte `json:"group_key"`
}

// MarshalKeyShare serializes a key share for storage or for handing a
// dealt share over to its owner.
func MarshalKeyShare(share *frost.KeyShare) ([]byte, error) {
	var err error

	wire := keyShareWire{Name: share.Name}
	if wire.ID, err = share.ID.MarshalBinary(); err != nil {
		return nil, fmt.Errorf("failed to marshal share id: %w", err)
	}
	if wire.Secret, err = share.Secret.MarshalBinary(); err != nil {
		return nil, fmt.Errorf("failed to marshal share secret: %w", err)
	}
	if wire.Public, err = share.Public.MarshalBinary(); err != nil {
		return nil, fmt.Errorf("failed to marshal share public: %w", err)
	}
	if wire.GroupKey, err = share.GroupKey.MarshalBinary(); err != nil {
		return nil, fmt.Errorf("failed to marshal group key: %w", err)
	}

	return json.Marshal(wire)
}

func UnmarshalKeyShare(data []byte) (*frost.KeyShare, error) {
	var wire keyShareWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key share: %w", err)
	}

	share := &frost.KeyShare{
		Name:     wire.Name,
		ID:       frost.Suite().Scalar(),
		Secret:   frost.Suite().Scalar(),
		Public:   frost.Suite().Point(),
		GroupKey: frost.Suite().Point(),
	}
	if err := share.ID.UnmarshalBinary(wire.ID); err != nil {
		return nil, fmt.Errorf("failed to unmarshal share id: %w", err)
	}
	if err := share.Secret.UnmarshalBinary(wire.Secret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal share secret: %w", err)
	}
	if err := share.Public.UnmarshalBinary(wire.Public); err != nil {
		return nil, fmt.Errorf("failed to unmarshal share public: %w", err)
	}
	if err := share.GroupKey.UnmarshalBinary(wire.GroupKey); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group key: %w", err)
	}

	return share, nil
}

func (m *Machine) saveKeyShare(ceremonyID string, share *frost.KeyShare) error {
	salt, err := m.getSalt()
	if err != nil {
		return err
	}

	wireBz, err := MarshalKeyShare(share)
	if err != nil {
		return fmt.Errorf("failed to marshal key share: %w", err)
	}

	encryptedShare, err := encrypt(m.encryptionKey, salt, wireBz)
	if err != nil {
		return fmt.Errorf("failed to encrypt key share: %w", err)
	}

	if err := m.db.Put([]byte(makeKeyShareDBKey(ceremonyID)), encryptedShare, nil); err != nil {
		return fmt.Errorf("failed to save key share into db: %w", err)
	}
	return nil
}

func (m *Machine) loadKeyShare(ceremonyID string) (*frost.KeyShare, error) {
	salt, err := m.getSalt()
	if err != nil {
		return nil, err
	}

	shareBz, err := m.db.Get([]byte(makeKeyShareDBKey(ceremonyID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get key share for ceremony %s: %w", ceremonyID, err)
	}

	decryptedShare, err := decrypt(m.encryptionKey, salt, shareBz)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt key share: %w", err)
	}

	return UnmarshalKeyShare(decryptedShare)
}

// signingNonceWire is the storable form of an unspent nonce pair.
type signingNonceWire struct {
	Name    string `json:"name"`
	Hiding  []byte `json:"hiding"`
	Binding []byte `json:"binding"`
}

func (m *Machine) saveSigningNonce(ceremonyID string, nonce *frost.SigningNonce) error {
	salt, err := m.getSalt()
	if err != nil {
		return err
	}

	wire := signingNonceWire{Name: nonce.Name}
	if wire.Hiding, err = nonce.Hiding.MarshalBinary(); err != nil {
		return fmt.Errorf("failed to marshal hiding nonce: %w", err)
	}
	if wire.Binding, err = nonce.Binding.MarshalBinary(); err != nil {
		return fmt.Errorf("failed to marshal binding nonce: %w", err)
	}

	wireBz, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("failed to marshal signing nonce: %w", err)
	}

	encryptedNonce, err := encrypt(m.encryptionKey, salt, wireBz)
	if err != nil {
		return fmt.Errorf("failed to encrypt signing nonce: %w", err)
	}

	if err := m.db.Put([]byte(makeSigningNonceDBKey(ceremonyID)), encryptedNonce, nil); err != nil {
		return fmt.Errorf("failed to save signing nonce into db: %w", err)
	}
	return nil
}

func (m *Machine) loadSigningNonce(ceremonyID string) (*frost.SigningNonce, error) {
	salt, err := m.getSalt()
	if err != nil {
		return nil, err
	}

	nonceBz, err := m.db.Get([]byte(makeSigningNonceDBKey(ceremonyID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get signing nonce for ceremony %s: %w", ceremonyID, err)
	}

	decryptedNonce, err := decrypt(m.encryptionKey, salt, nonceBz)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt signing nonce: %w", err)
	}

	var wire signingNonceWire
	if err := json.Unmarshal(decryptedNonce, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signing nonce: %w", err)
	}

	nonce := &frost.SigningNonce{
		Name:    wire.Name,
		Hiding:  frost.Suite().Scalar(),
		Binding: frost.Suite().Scalar(),
	}
	if err := nonce.Hiding.UnmarshalBinary(wire.Hiding); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hiding nonce: %w", err)
	}
	if err := nonce.Binding.UnmarshalBinary(wire.Binding); err != nil {
		return nil, fmt.Errorf("failed to unmarshal binding nonce: %w", err)
	}

	return nonce, nil
}

// deleteSigningNonce removes a spent nonce pair. A nonce signing two
// different packages leaks the secret share.
func (m *Machine) deleteSigningNonce(ceremonyID string) error {
	if err := m.db.Delete([]byte(makeSigningNonceDBKey(ceremonyID)), nil); err != nil {
		return fmt.Errorf("failed to delete signing nonce: %w", err)
	}
	return nil
}

func (m *Machine) storeOperation(o types.Operation) error {
	ceremonyOperationsLog, err := m.getCeremonyOperationLog()
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get operationsLogBz from db: %w", err)
	}

	operationsLog := ceremonyOperationsLog[o.CeremonyID]
	operationsLog = append(operationsLog, o)
	ceremonyOperationsLog[o.CeremonyID] = operationsLog

	ceremonyOperationsLogBz, err := json.Marshal(ceremonyOperationsLog)
	if err != nil {
		return fmt.Errorf("failed to marshal operationsLog: %w", err)
	}

	if err := m.db.Put([]byte(operationsLogDBKey), ceremonyOperationsLogBz, nil); err != nil {
		return fmt.Errorf("failed to put updated operationsLog: %w", err)
	}

	return nil
}

func (m *Machine) getOperationsLog(ceremonyID string) ([]types.Operation, error) {
	ceremonyOperationsLog, err := m.getCeremonyOperationLog()
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get operationsLogBz from db: %w", err)
	}

	operationsLog, ok := ceremonyOperationsLog[ceremonyID]
	if !ok {
		return nil, fmt.Errorf("operation log not found for %s", ceremonyID)
	}

	return operationsLog, nil
}

func (m *Machine) dropCeremonyOperationLog(ceremonyID string) error {
	ceremonyOperationsLog, err := m.getCeremonyOperationLog()
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get operationsLogBz from db: %w", err)
	}

	ceremonyOperationsLog[ceremonyID] = []types.Operation{}
	ceremonyOperationsLogBz, err := json.Marshal(ceremonyOperationsLog)
	if err != nil {
		return fmt.Errorf("failed to marshal operationsLog: %w", err)
	}

	if err := m.db.Put([]byte(operationsLogDBKey), ceremonyOperationsLogBz, nil); err != nil {
		return fmt.Errorf("failed to put updated operationsLog: %w", err)
	}

	return nil
}

func (m *Machine) getCeremonyOperationLog() (CeremonyOperationLog, error) {
	operationsLogBz, err := m.db.Get([]byte(operationsLogDBKey), nil)
	if err != nil {
		return nil, err
	}

	var ceremonyOperationsLog CeremonyOperationLog
	if err := json.Unmarshal(operationsLogBz, &ceremonyOperationsLog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored operationsLog: %w", err)
	}

	return ceremonyOperationsLog, nil
}

func (m *Machine) ensureSalt() error {
	if _, err := m.db.Get([]byte(saltDBKey), nil); err == nil {
		return nil
	} else if !errors.Is(err, leveldb.ErrNotFound) {
		return fmt.Errorf("failed to read salt from db: %w", err)
	}

	salt := make([]byte, 32)
	if _, err := m.rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := m.db.Put([]byte(saltDBKey), salt, nil); err != nil {
		return fmt.Errorf("failed to put salt into db: %w", err)
	}
	return nil
}
