package main

import (
	"fmt"

	"github.com/curio-network/gcurio/cmd/utils"
	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/settlement"
	"github.com/urfave/cli/v2"
)

type outputPrefix struct {
	Address string `json:"address"`
	Prefix  string `json:"prefix"`
}

var commandPrefix = &cli.Command{
	Name:      "prefix",
	Usage:     "derive the asset identifier prefix of an address",
	ArgsUsage: "<address>",
	Description: `
Derive the 12-digit decimal asset identifier prefix bound to an address.
Asset identifiers created through deferred settlement must start with the
creator's prefix.`,
	Flags: []cli.Flag{
		jsonFlag,
	},
	Action: func(ctx *cli.Context) error {
		arg := ctx.Args().First()
		if !common.IsHexAddress(arg) {
			utils.Fatalf("Not a valid address: %q", arg)
		}
		addr := common.HexToAddress(arg)
		out := outputPrefix{
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
