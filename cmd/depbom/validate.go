package main

import (
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-depbom/bom"
	"github.com/albertocavalcante/go-depbom/sign"
)

const (
	flagDigest    = "digest"
	flagVerifyKey = "verify-key"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a bill of materials written by depbom",
		Long: `Check a bill of materials written by depbom against its CycloneDX 1.4 profile.

The profile accepts every CycloneDX 1.4 element but checks in full only the
ones depbom writes; it is not a conformance check for documents from other
tools.

The format is taken from the file extension. With --digest the file must also
match a recorded sha256 digest; with --verify-key its detached FILE.asc
signature is checked against the given public key.`,
		Args:              cobra.ExactArgs(1),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root, args[0])
		},
	}
	cmd.Flags().String(flagDigest, "", "expected digest of the file, e.g. sha256:…")
	cmd.Flags().String(flagVerifyKey, "", "armored OpenPGP public key to verify FILE.asc with")
	return cmd
}

func runValidate(cmd *cobra.Command, root *rootOptions, path string) error {
	v := root.v
	out := cmd.OutOrStdout()

	if err := bom.ValidateFile(path); err != nil {
		var verr *bom.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "  %s\n", fe)
			}
		}
		return err
	}

	if d := v.GetString(flagDigest); d != "" {
		if err := bom.VerifyDigest(path, digest.Digest(d)); err != nil {
			return err
		}
	}

	if keyPath := v.GetString(flagVerifyKey); keyPath != "" {
		keyring, err := sign.ReadKeyFile(keyPath)
		if err != nil {
			return err
		}
		signer, err := sign.VerifyFile(keyring, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "signature by %s is valid\n", signer.PrimaryKey.KeyIdString())
	}

	fmt.Fprintf(out, "%s is valid\n", path)
	return nil
}
