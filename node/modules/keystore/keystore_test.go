package keystore_test

import (
	"crypto/ed25519"
	"os"
	"testing"

	"github.com/frostline/fc4tx/node/modules/keystore"

	"github.com/stretchr/testify/require"
)

func TestLevelDBKeyStore_PutLoadKeys(t *testing.T) {
	var (
		req      = require.New(t)
		dbPath   = "/tmp/fc4tx_test_keystore"
		username = "test_user"
	)
	defer os.RemoveAll(dbPath)

	stg, err := keystore.NewLevelDBKeyStore(username, dbPath)
	req.NoError(err)

	keyPair := keystore.NewKeyPair()
	req.NoError(stg.PutKeys(username, keyPair))

	loadedKeyPair, err := stg.LoadKeys(username, "")
	req.NoError(err)
	req.Equal(keyPair.Pub, loadedKeyPair.Pub)
	req.Equal(keyPair.Priv, loadedKeyPair.Priv)
	req.Equal(keyPair.GetAddr(), loadedKeyPair.GetAddr())

	// Keys survive signing round trip after storage.
	message := []byte("test message")
	sig := ed25519.Sign(loadedKeyPair.Priv, message)
	req.True(ed25519.Verify(loadedKeyPair.Pub, message, sig))

	_, err = stg.LoadKeys("unknown_user", "")
	req.Error(err)
}
