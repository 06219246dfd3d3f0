package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/gconf"
)

// DefaultProgramID is the program id written into new genesis files.
const DefaultProgramID = "5gdV4b4cPnnRkVSvBq8WxCxRfyq7i5z9R5scwm3BA4ps"

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

// FromGenesis stores the escrow configuration. No offers can be declared
// in genesis.
func (Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	var conf Configuration
	return gconf.InitConfig(db, opts, packageName, &conf)
}
