package escrow

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
)

const packageName = "escrow"

var configurationDiscriminator = ledger.AccountDiscriminator("EscrowConfiguration")

// Configuration of the escrow extension.
type Configuration struct {
	// ProgramID is the base58 encoded id of the escrow program. It is
	// the namespace owner of every derived offer address.
	ProgramID string `json:"program_id"`
}

func (c *Configuration) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(configurationDiscriminator, c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(configurationDiscriminator, raw, c)
}

func (c *Configuration) Validate() error {
	if _, err := solana.PublicKeyFromBase58(c.ProgramID); err != nil {
		return errors.Field("ProgramID", errors.ErrInvalidInput, err.Error())
	}
	return nil
}

// Program returns the program id as a public key.
func (c *Configuration) Program() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.ProgramID)
}

// LoadProgramID returns the configured escrow program id.
func LoadProgramID(db gconf.ReadStore) (solana.PublicKey, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "load escrow configuration")
	}
	if err := conf.Validate(); err != nil {
		return solana.PublicKey{}, err
	}
	return conf.Program(), nil
}
