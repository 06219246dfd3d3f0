package app

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/iov-one/ledger/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"gopkg.in/yaml.v3"
)

// Genesis file format, designed to be overlayed with tendermint genesis
type Genesis struct {
	ChainID     string          `json:"chain_id"`
	GenesisTime time.Time       `json:"genesis_time,omitempty"`
	AppState    json.RawMessage `json:"app_state"`
}

// LoadGenesis reads a genesis file. Files with a .yaml or .yml extension
// are parsed as YAML, anything else as JSON.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "read genesis: %s", err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return ParseYAMLGenesis(raw)
	default:
		return ParseJSONGenesis(raw)
	}
}

// ParseJSONGenesis decodes a JSON genesis document.
func ParseJSONGenesis(raw []byte) (*Genesis, error) {
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "genesis json: %s", err)
	}
	return &gen, gen.Validate()
}

// ParseYAMLGenesis decodes a YAML genesis document. The app_state section is
// converted to JSON so that extensions read it the same way.
func ParseYAMLGenesis(raw []byte) (*Genesis, error) {
	var doc struct {
		ChainID     string      `yaml:"chain_id"`
		GenesisTime time.Time   `yaml:"genesis_time"`
		AppState    interface{} `yaml:"app_state"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "genesis yaml: %s", err)
	}
	state, err := json.Marshal(doc.AppState)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "app_state: %s", err)
	}
	gen := Genesis{
		ChainID:     doc.ChainID,
		GenesisTime: doc.GenesisTime,
		AppState:    state,
	}
	return &gen, gen.Validate()
}

// Validate checks the genesis is complete.
func (g *Genesis) Validate() error {
	if g.ChainID == "" {
		return errors.Field("ChainID", errors.ErrEmpty, "required")
	}
	if len(g.AppState) == 0 || string(g.AppState) == "null" {
		return errors.Field("AppState", errors.ErrEmpty, "required")
	}
	return nil
}

// InitChainRequest returns the ABCI request that initializes a ledger with
// this genesis.
func (g *Genesis) InitChainRequest() abci.RequestInitChain {
	return abci.RequestInitChain{
		Time:          g.GenesisTime,
		ChainId:       g.ChainID,
		AppStateBytes: g.AppState,
	}
}
