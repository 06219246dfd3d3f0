package app

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGenesis(t *testing.T) {
	dir, err := ioutil.TempDir("", "genesis")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	jsonPath := filepath.Join(dir, "genesis.json")
	require.NoError(t, ioutil.WriteFile(jsonPath, []byte(`{
		"chain_id": "escrow-test",
		"app_state": {"conf": {"cash": {"lamports_per_byte": 2}}}
	}`), 0600))

	yamlPath := filepath.Join(dir, "genesis.yaml")
	require.NoError(t, ioutil.WriteFile(yamlPath, []byte(`
chain_id: escrow-test
app_state:
  conf:
    cash:
      lamports_per_byte: 2
`), 0600))

	fromJSON, err := LoadGenesis(jsonPath)
	require.NoError(t, err)
	fromYAML, err := LoadGenesis(yamlPath)
	require.NoError(t, err)

	require.Equal(t, "escrow-test", fromJSON.ChainID)
	require.Equal(t, fromJSON.ChainID, fromYAML.ChainID)
	require.JSONEq(t, string(fromJSON.AppState), string(fromYAML.AppState))

	req := fromYAML.InitChainRequest()
	require.Equal(t, "escrow-test", req.ChainId)
	require.JSONEq(t, string(fromJSON.AppState), string(req.AppStateBytes))

	_, err = LoadGenesis(filepath.Join(dir, "missing.json"))
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestGenesisValidation(t *testing.T) {
	_, err := ParseJSONGenesis([]byte(`{"app_state": {}}`))
	assert.FieldError(t, err, "ChainID", errors.ErrEmpty)

	_, err = ParseYAMLGenesis([]byte("chain_id: abcdefg\n"))
	assert.FieldError(t, err, "AppState", errors.ErrEmpty)

	_, err = ParseJSONGenesis([]byte(`{not json`))
	assert.IsErr(t, errors.ErrInvalidInput, err)
}
