package localwallet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/nacl/sign"

	"github.com/mrz1836/sigil-connect/internal/fileutil"
	"github.com/mrz1836/sigil-connect/internal/provider"
	"github.com/mrz1836/sigil-connect/internal/sigilcrypto"
	sigilerr "github.com/mrz1836/sigil-connect/pkg/errors"
)

const (
	keystoreVersion = 1

	// keystoreFilePermissions is the permission mode for keystore files.
	keystoreFilePermissions = 0o600
)

// Keystore is the on-disk form of the local wallet. Only the public key and
// path are readable without the passphrase.
type Keystore struct {
	Version        int       `json:"version"`
	PublicKey      string    `json:"public_key"`
	DerivationPath string    `json:"derivation_path"`
	CreatedAt      time.Time `json:"created_at"`
	SealedMnemonic []byte    `json:"sealed_mnemonic"`
}

// Account is an unlocked keypair. Close wipes the secret.
type Account struct {
	PublicKey provider.Ed25519Key
	secret    *sigilcrypto.SecureBytes
}

// Close destroys the secret key.
func (a *Account) Close() {
	if a.secret != nil {
		a.secret.Destroy()
	}
}

// sign returns the detached ed25519 signature of message.
func (a *Account) sign(message []byte) ([]byte, error) {
	var signed []byte
	ok := a.secret.Use(func(b []byte) {
		var priv [64]byte
		copy(priv[:], b)
		signed = sign.Sign(nil, message, &priv)
		wipe(priv[:])
	})
	if !ok {
		return nil, provider.ErrDisconnected
	}
	return signed[:sign.Overhead], nil
}

// Verify checks a detached signature made by the account.
func (a *Account) Verify(message, signature []byte) bool {
	return Verify(a.PublicKey, message, signature)
}

// Verify checks a detached ed25519 signature.
func Verify(pub provider.Ed25519Key, message, signature []byte) bool {
	if len(signature) != sign.Overhead {
		return false
	}
	signed := make([]byte, 0, len(signature)+len(message))
	signed = append(signed, signature...)
	signed = append(signed, message...)

	key := [32]byte(pub)
	_, ok := sign.Open(nil, signed, &key)
	return ok
}

// DeriveAccount derives the keypair for mnemonic at path.
func DeriveAccount(mnemonic, path string) (*Account, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	seed, err := mnemonicSeed(mnemonic)
	if err != nil {
		return nil, err
	}
	defer wipe(seed)

	keySeed, err := deriveKey(seed, indexes)
	if err != nil {
		return nil, err
	}
	defer wipe(keySeed)

	pub, priv, err := sign.GenerateKey(bytes.NewReader(keySeed))
	if err != nil {
		return nil, fmt.Errorf("building keypair: %w", err)
	}
	defer wipe(priv[:])

	return &Account{
		PublicKey: provider.Ed25519Key(*pub),
		secret:    sigilcrypto.SecureBytesFromSlice(priv[:]),
	}, nil
}

// CreateKeystore seals mnemonic under passphrase and writes it to path. It
// refuses to overwrite an existing keystore.
func CreateKeystore(path, mnemonic, passphrase, derivationPath string) (*Keystore, error) {
	if KeystoreExists(path) {
		return nil, sigilerr.WithDetails(sigilerr.ErrKeystoreExists, map[string]string{"path": path})
	}

	account, err := DeriveAccount(mnemonic, derivationPath)
	if err != nil {
		if errors.Is(err, ErrInvalidMnemonic) {
			return nil, sigilerr.WithCause(sigilerr.ErrInvalidMnemonic, err)
		}
		return nil, sigilerr.WithCause(sigilerr.ErrInvalidInput, err)
	}
	defer account.Close()

	phrase := []byte(NormalizeMnemonic(mnemonic))
	defer wipe(phrase)

	sealed, err := sigilcrypto.Seal(phrase, passphrase)
	if err != nil {
		return nil, sigilerr.WithCause(sigilerr.ErrInvalidInput, err)
	}

	ks := &Keystore{
		Version:        keystoreVersion,
		PublicKey:      account.PublicKey.String(),
		DerivationPath: derivationPath,
		CreatedAt:      time.Now().UTC(),
		SealedMnemonic: sealed,
	}

	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding keystore: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, keystoreFilePermissions); err != nil {
		return nil, sigilerr.Wrap(err, "writing keystore")
	}
	return ks, nil
}

// LoadKeystore reads the keystore at path without unlocking it.
func LoadKeystore(path string) (*Keystore, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, sigilerr.WithDetails(sigilerr.ErrKeystoreNotFound, map[string]string{"path": path})
		}
		return nil, sigilerr.Wrap(err, "reading keystore")
	}

	var ks Keystore
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, sigilerr.WithCause(sigilerr.ErrConfigInvalid, fmt.Errorf("parsing keystore %s: %w", path, err))
	}
	if ks.Version != keystoreVersion {
		return nil, sigilerr.WithCause(sigilerr.ErrConfigInvalid, fmt.Errorf("unsupported keystore version %d", ks.Version))
	}
	if _, err := provider.ParseEd25519Key(ks.PublicKey); err != nil {
		return nil, sigilerr.WithCause(sigilerr.ErrConfigInvalid, err)
	}
	return &ks, nil
}

// KeystoreExists reports whether a keystore file is present at path.
func KeystoreExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Address returns the stored public key.
func (k *Keystore) Address() (provider.Ed25519Key, error) {
	return provider.ParseEd25519Key(k.PublicKey)
}

// Unlock opens the sealed mnemonic and derives the account. The derived key
// must match the stored public key.
func (k *Keystore) Unlock(passphrase string) (*Account, error) {
	phrase, err := sigilcrypto.OpenSecure(k.SealedMnemonic, passphrase)
	if err != nil {
		if errors.Is(err, sigilcrypto.ErrWrongPassphrase) || errors.Is(err, sigilcrypto.ErrEmptyPassphrase) {
			return nil, sigilerr.WithCause(sigilerr.ErrDecryptionFailed, err)
		}
		return nil, sigilerr.Wrap(err, "opening keystore")
	}
	defer phrase.Destroy()

	var account *Account
	phrase.Use(func(b []byte) {
		account, err = DeriveAccount(string(b), k.DerivationPath)
	})
	if err != nil {
		return nil, sigilerr.WithCause(sigilerr.ErrConfigInvalid, err)
	}

	if account.PublicKey.String() != k.PublicKey {
		account.Close()
		return nil, sigilerr.WithCause(sigilerr.ErrConfigInvalid, errors.New("keystore public key does not match its mnemonic")) //nolint:err113 // One-off integrity failure
	}
	return account, nil
}
