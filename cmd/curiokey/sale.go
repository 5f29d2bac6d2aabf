package main

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/curio-network/gcurio/cmd/utils"
	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/common/hexutil"
	"github.com/curio-network/gcurio/crypto"
	"github.com/curio-network/gcurio/params"
	"github.com/curio-network/gcurio/settlement"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var (
	registryFlag = &cli.StringFlag{
		Name:     "registry",
		Usage:    "asset collection address the sale settles against",
		Required: true,
	}
	assetIDFlag = &cli.StringFlag{
		Name:     "assetid",
		Usage:    "decimal asset identifier being sold",
		Required: true,
	}
	contextFlag = &cli.StringFlag{
		Name:  "context",
		Usage: "settlement engine address the signature is scoped to",
		Value: params.SettlementAddress.Hex(),
	}
	payeesFlag = &cli.StringFlag{
		Name:     "payees",
		Usage:    "comma-separated payment recipient addresses",
		Required: true,
	}
	amountsFlag = &cli.StringFlag{
		Name:     "amounts",
		Usage:    "comma-separated decimal payment amounts, parallel to --payees",
		Required: true,
	}
	creatorSigFlag = &cli.StringFlag{
		Name:     "creator-sig",
		Usage:    "0x-hex creator signature over the sale terms",
		Required: true,
	}
	authoritySigFlag = &cli.StringFlag{
		Name:     "authority-sig",
		Usage:    "0x-hex trusted authority signature over the sale terms",
		Required: true,
	}
	authorityFlag = &cli.StringFlag{
		Name:     "authority",
		Usage:    "address of the trusted authority",
		Required: true,
	}
)

var commandSignSale = &cli.Command{
	Name:  "signsale",
	Usage: "sign sale terms with the key in the keyfile",
	Description: `
Sign the canonical sale terms digest with the keyfile's private key. Both the
creator and the trusted authority produce their signatures this way; a
purchase settles only when both signatures cover the identical terms.`,
	Flags: []cli.Flag{
		jsonFlag,
		keyfileFlag,
		registryFlag,
		assetIDFlag,
		contextFlag,
		payeesFlag,
		amountsFlag,
	},
	Action: func(ctx *cli.Context) error {
		terms := saleTermsFromFlags(ctx)
		key, err := crypto.LoadECDSA(ctx.String(keyfileFlag.Name))
		if err != nil {
			utils.Fatalf("Failed to read the keyfile: %v", err)
		}
		sig, err := settlement.SignSale(terms, key)
		if err != nil {
			utils.Fatalf("Failed to sign sale terms: %v", err)
		}
		hash, _ := settlement.SaleHash(terms)

		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(struct {
				Hash      string `json:"hash"`
				Signature string `json:"signature"`
			}{hash.Hex(), hexutil.Encode(sig)})
		} else {
			printSaleTable(terms)
			fmt.Println("Sale hash:", hash.Hex())
			fmt.Println("Signature:", hexutil.Encode(sig))
		}
		return nil
	},
}

var commandVerifySale = &cli.Command{
	Name:  "verifysale",
	Usage: "verify the dual signature over sale terms",
	Description: `
Verify that the authority signature recovers to the given trusted authority
address and print the creator identity recovered from the creator signature.`,
	Flags: []cli.Flag{
		jsonFlag,
		registryFlag,
		assetIDFlag,
		contextFlag,
		payeesFlag,
		amountsFlag,
		creatorSigFlag,
		authoritySigFlag,
		authorityFlag,
	},
	Action: func(ctx *cli.Context) error {
		terms := saleTermsFromFlags(ctx)
		creatorSig, err := hexutil.Decode(ctx.String(creatorSigFlag.Name))
		if err != nil {
			utils.Fatalf("Invalid creator signature: %v", err)
		}
		authoritySig, err := hexutil.Decode(ctx.String(authoritySigFlag.Name))
		if err != nil {
			utils.Fatalf("Invalid authority signature: %v", err)
		}
		authorityArg := ctx.String(authorityFlag.Name)
		if !common.IsHexAddress(authorityArg) {
			utils.Fatalf("Not a valid authority address: %q", authorityArg)
		}

		creator, err := settlement.RecoverSigners(terms, creatorSig, authoritySig, common.HexToAddress(authorityArg))
		if err != nil {
			utils.Fatalf("Sale verification failed: %v", err)
		}
		prefix := settlement.DerivePrefix(creator)
		prefixMatch := settlement.ExtractLeadingDigits(terms.AssetID.Text(10), settlement.PrefixDigits) == prefix

		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(struct {
				Creator     string `json:"creator"`
				Prefix      string `json:"prefix"`
				PrefixMatch bool   `json:"prefixMatch"`
			}{creator.Hex(), prefix, prefixMatch})
		} else {
			printSaleTable(terms)
			fmt.Println("Creator:       ", creator.Hex())
			fmt.Println("Creator prefix:", prefix)
			fmt.Println("Prefix match:  ", prefixMatch)
		}
		return nil
	},
}

// saleTermsFromFlags parses the shared sale term flags, exiting the program
// on any malformed input.
func saleTermsFromFlags(ctx *cli.Context) *settlement.SaleTerms {
	registryArg := ctx.String(registryFlag.Name)
	if !common.IsHexAddress(registryArg) {
		utils.Fatalf("Not a valid registry address: %q", registryArg)
	}
	contextArg := ctx.String(contextFlag.Name)
	if !common.IsHexAddress(contextArg) {
		utils.Fatalf("Not a valid context address: %q", contextArg)
	}
	assetID, ok := new(big.Int).SetString(ctx.String(assetIDFlag.Name), 10)
	if !ok || assetID.Sign() < 0 {
		utils.Fatalf("Not a valid decimal asset id: %q", ctx.String(assetIDFlag.Name))
	}

	payeeArgs := strings.Split(ctx.String(payeesFlag.Name), ",")
	amountArgs := strings.Split(ctx.String(amountsFlag.Name), ",")
	if len(payeeArgs) != len(amountArgs) {
		utils.Fatalf("Got %d payees but %d amounts", len(payeeArgs), len(amountArgs))
	}
	payees := make([]common.Address, len(payeeArgs))
	amounts := make([]*big.Int, len(amountArgs))
	for i := range payeeArgs {
		if !common.IsHexAddress(payeeArgs[i]) {
			utils.Fatalf("Not a valid payee address: %q", payeeArgs[i])
		}
		payees[i] = common.HexToAddress(payeeArgs[i])
		amount, ok := new(big.Int).SetString(amountArgs[i], 10)
		if !ok || amount.Sign() <= 0 {
			utils.Fatalf("Not a valid positive decimal amount: %q", amountArgs[i])
		}
		amounts[i] = amount
	}
	return &settlement.SaleTerms{
		Registry: common.HexToAddress(registryArg),
		AssetID:  assetID,
		Context:  common.HexToAddress(contextArg),
		Payees:   payees,
		Amounts:  amounts,
	}
}

// printSaleTable renders the sale terms and payment distribution.
func printSaleTable(terms *settlement.SaleTerms) {
	fmt.Println("Registry:  ", terms.Registry.Hex())
	fmt.Println("Asset id:  ", terms.AssetID.Text(10))
	fmt.Println("Context:   ", terms.Context.Hex())

	total := new(big.Int)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Payee", "Amount"})
	for i, payee := range terms.Payees {
		table.Append([]string{payee.Hex(), terms.Amounts[i].Text(10)})
		total.Add(total, terms.Amounts[i])
	}
	table.SetFooter([]string{"Total", total.Text(10)})
	table.Render()
}
