package main

import (
	"encoding/hex"
	"fmt"

	"github.com/curio-network/gcurio/cmd/utils"
	"github.com/curio-network/gcurio/crypto"
	"github.com/curio-network/gcurio/settlement"
	"github.com/urfave/cli/v2"
)

type outputInspect struct {
	Address    string `json:"address"`
	Prefix     string `json:"prefix"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey,omitempty"`
}

var privateFlag = &cli.BoolFlag{
	Name:  "private",
	Usage: "include the private key in the output",
}

var commandInspect = &cli.Command{
	Name:      "inspect",
	Usage:     "inspect a keyfile",
	ArgsUsage: "<keyfile>",
	Description: `
Print the address, the derived asset identifier prefix and the public key of
the keyfile.

Private key information can be printed by using the --private flag;
make sure to use this feature with great caution!`,
	Flags: []cli.Flag{
		jsonFlag,
		privateFlag,
	},
	Action: func(ctx *cli.Context) error {
		keyfilepath := ctx.Args().First()
		if keyfilepath == "" {
			keyfilepath = defaultKeyfileName
		}
		key, err := crypto.LoadECDSA(keyfilepath)
		if err != nil {
			utils.Fatalf("Failed to read the keyfile at '%s': %v", keyfilepath, err)
		}

		addr := crypto.PubkeyToAddress(key.PublicKey)
		out := outputInspect{
			Address:   addr.Hex(),
			Prefix:    settlement.DerivePrefix(addr),
			PublicKey: hex.EncodeToString(crypto.FromECDSAPub(&key.PublicKey)),
		}
		if ctx.Bool(privateFlag.Name) {
			out.PrivateKey = hex.EncodeToString(crypto.FromECDSA(key))
		}

		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Println("Address:       ", out.Address)
			fmt.Println("Asset prefix:  ", out.Prefix)
			fmt.Println("Public key:    ", out.PublicKey)
			if out.PrivateKey != "" {
				fmt.Println("Private key:   ", out.PrivateKey)
			}
		}
		return nil
	},
}
