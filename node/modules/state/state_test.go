package state_test

import (
	"os"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/frostline/fc4tx/node/modules/state"

	"github.com/stretchr/testify/require"
)

func TestLevelDBState_SaveOffset(t *testing.T) {
	var (
		req    = require.New(t)
		dbPath = "/tmp/fc4tx_test_SaveOffset"
		topic  = "test_topic"
	)
	defer os.RemoveAll(dbPath)

	stg, err := state.NewLevelDBState(dbPath, topic)
	req.NoError(err)

	var offset uint64 = 1
	err = stg.SaveOffset(offset)
	req.NoError(err)

	loadedOffset, err := stg.LoadOffset()
	req.NoError(err)
	req.Equal(offset, loadedOffset)
}

func TestLevelDBState_GetSetDelete(t *testing.T) {
	var (
		req    = require.New(t)
		dbPath = "/tmp/fc4tx_test_GetSetDelete"
		topic  = "test_topic"
	)
	defer os.RemoveAll(dbPath)

	stg, err := state.NewLevelDBState(dbPath, topic)
	req.NoError(err)

	key := state.MakeCompositeKeyString(topic, "test_key")
	req.NoError(stg.Set(key, []byte("test_value")))

	value, err := stg.Get(key)
	req.NoError(err)
	req.Equal([]byte("test_value"), value)

	req.NoError(stg.Delete(key))

	value, err = stg.Get(key)
	req.NoError(err)
	req.Empty(value)
}

func TestLevelDBState_Reset(t *testing.T) {
	var (
		req    = require.New(t)
		dbPath = "/tmp/fc4tx_test_Reset"
		topic  = "test_topic"
		re     = regexp.MustCompile(dbPath + `_(?P<ts>\d+)`)
	)
	defer os.RemoveAll(dbPath)

	st, err := state.NewLevelDBState(dbPath, topic)
	req.NoError(err)

	var offset uint64 = 1
	err = st.SaveOffset(offset)
	req.NoError(err)

	loadedOffset, err := st.LoadOffset()
	req.NoError(err)
	req.Equal(offset, loadedOffset)

	timeBefore := time.Now().Unix()
	path, err := st.Reset("")
	timeAfter := time.Now().Unix()

	req.NoError(err)
	submatches := re.FindStringSubmatch(path)
	req.Greater(len(submatches), 0)

	ts, err := strconv.Atoi(submatches[1])
	req.NoError(err)
	req.GreaterOrEqual(int64(ts), timeBefore)
	req.LessOrEqual(int64(ts), timeAfter)

	newLoadedOffset, err := st.LoadOffset()
	req.NoError(err)
	req.NotEqual(newLoadedOffset, loadedOffset)
}
