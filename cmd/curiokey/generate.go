package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/curio-network/gcurio/cmd/utils"
	"github.com/curio-network/gcurio/crypto"
	"github.com/curio-network/gcurio/settlement"
	"github.com/urfave/cli/v2"
)

type outputGenerate struct {
	Address string `json:"address"`
	Prefix  string `json:"prefix"`
}

var privateKeyFlag = &cli.StringFlag{
	Name:  "privatekey",
	Usage: "file containing a raw private key to import",
}

var commandGenerate = &cli.Command{
	Name:      "generate",
	Usage:     "generate new keyfile",
	ArgsUsage: "[ <keyfile> ]",
	Description: `
Generate a new keyfile.

If you want to import an existing private key, it can be specified by setting
--privatekey with the location of the file containing the private key.
`,
	Flags: []cli.Flag{
		jsonFlag,
		privateKeyFlag,
	},
	Action: func(ctx *cli.Context) error {
		// Check if keyfile path given and make sure it doesn't already exist.
		keyfilepath := ctx.Args().First()
		if keyfilepath == "" {
			keyfilepath = defaultKeyfileName
		}
		if _, err := os.Stat(keyfilepath); err == nil {
			utils.Fatalf("Keyfile already exists at %s.", keyfilepath)
		} else if !os.IsNotExist(err) {
			utils.Fatalf("Error checking if keyfile exists: %v", err)
		}

		var privateKey *ecdsa.PrivateKey
		var err error
		if file := ctx.String(privateKeyFlag.Name); file != "" {
			privateKey, err = crypto.LoadECDSA(file)
			if err != nil {
				utils.Fatalf("Can't load private key: %v", err)
			}
		} else {
			privateKey, err = crypto.GenerateKey()
			if err != nil {
				utils.Fatalf("Failed to generate random private key: %v", err)
			}
		}

		if err := os.MkdirAll(filepath.Dir(keyfilepath), 0700); err != nil {
			utils.Fatalf("Could not create directory %s: %v", filepath.Dir(keyfilepath), err)
		}
		if err := crypto.SaveECDSA(keyfilepath, privateKey); err != nil {
			utils.Fatalf("Failed to write keyfile to %s: %v", keyfilepath, err)
		}

		addr := crypto.PubkeyToAddress(privateKey.PublicKey)
		out := outputGenerate{
			Address: addr.Hex(),
			Prefix:  settlement.DerivePrefix(addr),
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Println("Address:     ", out.Address)
			fmt.Println("Asset prefix:", out.Prefix)
		}
		return nil
	},
}

// mustPrintJSON prints the JSON encoding of the given object and
// exits the program with an error message when marshaling fails.
func mustPrintJSON(jsonObject interface{}) {
	str, err := json.MarshalIndent(jsonObject, "", "  ")
	if err != nil {
		utils.Fatalf("Failed to marshal JSON object: %v", err)
	}
	fmt.Println(string(str))
}
