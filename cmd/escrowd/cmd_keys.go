package main

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ed25519"
)

const keysDir = "keys"

var isValidKeyName = regexp.MustCompile(`^[a-z0-9_\-]{1,32}$`).MatchString

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the ed25519 keys stored in the home directory",
	}

	var seed, path string
	newCmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := newKey(seed, path)
			if err != nil {
				return err
			}
			if err := saveKey(args[0], key); err != nil {
				return err
			}
			fmt.Println(key.PublicKey().Address())
			return nil
		},
	}
	newCmd.Flags().StringVar(&seed, "seed", "", "hex encoded seed to derive the key from, random if empty")
	newCmd.Flags().StringVar(&path, "path", crypto.DefaultDerivationPath, "derivation path used with --seed")

	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the address of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(args[0])
			if err != nil {
				return err
			}
			fmt.Println(key.PublicKey().Address())
			return nil
		},
	}

	cmd.AddCommand(newCmd, showCmd)
	return cmd
}

func newKey(seed, path string) (*crypto.PrivateKey, error) {
	if seed == "" {
		return crypto.GenPrivKeyEd25519(), nil
	}
	raw, err := hex.DecodeString(seed)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "seed must be hex encoded")
	}
	return crypto.DerivePrivKeyEd25519(raw, path)
}

func keyPath(name string) (string, error) {
	if !isValidKeyName(name) {
		return "", errors.Wrapf(errors.ErrInvalidInput, "key name %q", name)
	}
	return filepath.Join(config.Home, keysDir, name+".key"), nil
}

func saveKey(name string, key *crypto.PrivateKey) error {
	path, err := keyPath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "key %q", name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "create keys directory")
	}
	return ioutil.WriteFile(path, []byte(hex.EncodeToString(key.Ed25519)), 0600)
}

func loadKey(name string) (*crypto.PrivateKey, error) {
	path, err := keyPath(name)
	if err != nil {
		return nil, err
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "key %q", name)
	}
	bin, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "key %q is corrupted", name)
	}
	if len(bin) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "key %q has invalid length", name)
	}
	return &crypto.PrivateKey{Ed25519: bin}, nil
}
