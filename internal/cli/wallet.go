package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil-connect/internal/host"
	"github.com/mrz1836/sigil-connect/internal/localwallet"
	"github.com/mrz1836/sigil-connect/internal/output"
	sigilerr "github.com/mrz1836/sigil-connect/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	walletWords   int
	walletRestore bool
	walletQR      bool
)

// walletInitResult is the JSON shape of wallet init.
type walletInitResult struct {
	Address        string `json:"address"`
	DerivationPath string `json:"derivation_path"`
	Keystore       string `json:"keystore"`
	Mnemonic       string `json:"mnemonic,omitempty"`
}

// walletAddressResult is the JSON shape of wallet address.
type walletAddressResult struct {
	Address        string `json:"address"`
	DerivationPath string `json:"derivation_path"`
	URI            string `json:"uri"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command
var walletCmd = &cobra.Command{
	Use:     "wallet",
	Short:   "Manage the local development wallet",
	GroupID: "wallet",
	Long: `Manage the local Phantom-compatible wallet that is injected into the
provider slot in the terminal.

The wallet keeps its mnemonic sealed with a passphrase in the keystore file
under the home directory.`,
	Example: `  sigil-connect wallet init
  sigil-connect wallet address --qr`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command
var walletInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or restore the local wallet",
	Long: `Create a new local wallet, or restore one from an existing mnemonic.

A new mnemonic is printed once. Write it down: it is the only way to restore
the wallet if the keystore or its passphrase is lost.`,
	Example: `  sigil-connect wallet init
  sigil-connect wallet init --words 24
  sigil-connect wallet init --restore`,
	Args: cobra.NoArgs,
	RunE: runWalletInit,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command
var walletAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the local wallet address",
	Long: `Show the account address of the local wallet without unlocking it.

With --qr the address is also drawn as a QR code when stdout is a terminal.`,
	Example: `  sigil-connect wallet address
  sigil-connect wallet address --qr
  sigil-connect wallet address -o json`,
	Args: cobra.NoArgs,
	RunE: runWalletAddress,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command
var walletRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Forget that this application is trusted",
	Long: `Remove the trusted-origin entry for the configured origin and the local
wallet account. Entries live in the OS keychain, or in trusted-origins.json
under the home directory when no keychain is reachable.

The next connect will ask for approval again, and 'connect --trusted' will be
rejected until it does.`,
	Example: `  sigil-connect wallet revoke`,
	Args:    cobra.NoArgs,
	RunE:    runWalletRevoke,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	walletInitCmd.Flags().IntVar(&walletWords, "words", 12, "mnemonic length: 12 or 24")
	walletInitCmd.Flags().BoolVar(&walletRestore, "restore", false, "restore from an existing mnemonic")
	walletAddressCmd.Flags().BoolVar(&walletQR, "qr", false, "show the address as a QR code")

	walletCmd.AddCommand(walletInitCmd, walletAddressCmd, walletRevokeCmd)
	rootCmd.AddCommand(walletCmd)
}

func runWalletInit(cmd *cobra.Command, _ []string) error {
	path := cfg.KeystorePath()
	if localwallet.KeystoreExists(path) {
		return sigilerr.WithSuggestion(
			sigilerr.WithDetails(sigilerr.ErrKeystoreExists, map[string]string{"path": path}),
			"remove the keystore file to start over")
	}

	var (
		mnemonic string
		err      error
	)
	if walletRestore {
		mnemonic, err = readMnemonic(cmd)
	} else {
		mnemonic, err = localwallet.GenerateMnemonic(walletWords)
		if err != nil {
			err = sigilerr.WithCause(sigilerr.ErrInvalidInput, err)
		}
	}
	if err != nil {
		return err
	}

	passphrase, err := newPassphraseFn()
	if err != nil {
		return err
	}

	ks, err := localwallet.CreateKeystore(path, mnemonic, passphrase, cfg.Wallet.DerivationPath)
	if err != nil {
		return err
	}
	logger.Debug("wallet: created keystore %s for %s", path, ks.PublicKey)

	res := walletInitResult{
		Address:        ks.PublicKey,
		DerivationPath: ks.DerivationPath,
		Keystore:       path,
	}
	if !walletRestore {
		res.Mnemonic = mnemonic
	}
	if formatter.IsJSON() {
		return formatter.Print(res)
	}

	w := cmd.OutOrStdout()
	if res.Mnemonic != "" {
		output.Warn(w, "Write down this mnemonic. It will not be shown again:")
		outln(w)
		outln(w, "  "+res.Mnemonic)
		outln(w)
	}
	output.Success(w, "Wallet created: %s", res.Address)
	out(w, "  Path:     %s\n  Keystore: %s\n", res.DerivationPath, res.Keystore)
	return nil
}

// readMnemonic reads one line from stdin and validates it.
func readMnemonic(cmd *cobra.Command) (string, error) {
	out(cmd.ErrOrStderr(), "Enter mnemonic: ")
	line, err := localwallet.NewLineReader(cmd.InOrStdin()).ReadLine(cmdContext(cmd))
	if errors.Is(err, io.EOF) {
		return "", sigilerr.WithSuggestion(sigilerr.ErrInvalidMnemonic, "no mnemonic was entered")
	}
	if err != nil {
		return "", err
	}

	mnemonic := localwallet.NormalizeMnemonic(line)
	if err := localwallet.ValidateMnemonic(mnemonic); err != nil {
		return "", sigilerr.WithCause(sigilerr.ErrInvalidMnemonic, err)
	}
	return mnemonic, nil
}

func runWalletAddress(cmd *cobra.Command, _ []string) error {
	ks, err := localwallet.LoadKeystore(cfg.KeystorePath())
	if err != nil {
		return keystoreError(err)
	}

	res := walletAddressResult{
		Address:        ks.PublicKey,
		DerivationPath: ks.DerivationPath,
		URI:            output.IdentityURI(ks.PublicKey),
	}
	if formatter.IsJSON() {
		return formatter.Print(res)
	}

	w := cmd.OutOrStdout()
	outln(w, res.Address)
	if walletQR || cfg.Output.QR {
		return output.RenderQR(w, res.URI, output.DefaultQRConfig())
	}
	return nil
}

func runWalletRevoke(cmd *cobra.Command, _ []string) error {
	ks, err := localwallet.LoadKeystore(cfg.KeystorePath())
	if err != nil {
		return keystoreError(err)
	}

	origin := cfg.Wallet.Origin
	if err := host.DefaultTrustStore(cfg, logger).Revoke(origin, ks.PublicKey); err != nil {
		return sigilerr.Wrap(err, "revoking trust")
	}
	logger.Debug("wallet: revoked %s for %s", origin, ks.PublicKey)

	if formatter.IsJSON() {
		return output.FormatSuccess(cmd.OutOrStdout(), "revoked "+origin, formatter.Format())
	}
	output.Success(cmd.OutOrStdout(), "%s is no longer trusted by %s", origin, ks.PublicKey)
	return nil
}

// keystoreError adds a setup hint to a missing keystore.
func keystoreError(err error) error {
	if sigilerr.Is(err, sigilerr.ErrKeystoreNotFound) {
		return sigilerr.WithSuggestion(err, "run 'sigil-connect wallet init' first")
	}
	return err
}
