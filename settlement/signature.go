package settlement

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/curio-network/gcurio/accounts"
	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/crypto"
)

// SaleHash returns the Keccak256 digest of the canonical packed encoding of
// terms: registry address, 32-byte big-endian asset id, settlement context
// address, then every payee address followed by every 32-byte amount. The
// field order is part of the wire protocol.
func SaleHash(terms *SaleTerms) (common.Hash, error) {
	id, err := uint256Bytes(terms.AssetID, ErrInvalidAssetID)
	if err != nil {
		return common.Hash{}, err
	}
	size := 2*common.AddressLength + common.HashLength + len(terms.Payees)*common.AddressLength + len(terms.Amounts)*common.HashLength
	buf := make([]byte, 0, size)
	buf = append(buf, terms.Registry.Bytes()...)
	buf = append(buf, id...)
	buf = append(buf, terms.Context.Bytes()...)
	for _, payee := range terms.Payees {
		buf = append(buf, payee.Bytes()...)
	}
	for _, amount := range terms.Amounts {
		a, err := uint256Bytes(amount, ErrAmountOverflow)
		if err != nil {
			return common.Hash{}, err
		}
		buf = append(buf, a...)
	}
	return crypto.Keccak256Hash(buf), nil
}

func uint256Bytes(v *big.Int, outOfRange error) ([]byte, error) {
	if v == nil || v.Sign() < 0 || v.BitLen() > 256 {
		return nil, outOfRange
	}
	return v.FillBytes(make([]byte, common.HashLength)), nil
}

// saleDigest applies the wallet signed-message prefix transform to the sale
// hash, matching how both signatures are produced.
func saleDigest(terms *SaleTerms) ([]byte, error) {
	hash, err := SaleHash(terms)
	if err != nil {
		return nil, err
	}
	return accounts.TextHash(hash.Bytes()), nil
}

// SignSale produces a signature over terms with the given key, in the
// format RecoverSigners expects. Used by sellers, the trusted authority and
// the curiokey tool.
func SignSale(terms *SaleTerms, prv *ecdsa.PrivateKey) ([]byte, error) {
	digest, err := saleDigest(terms)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(digest, prv)
}

// RecoverSigners validates the dual signature over terms and returns the
// recovered creator identity.
//
// The authority signature is checked first: its signer must equal
// trustedAuthority or the whole verification fails. The creator identity is
// recovered, never asserted, and is only trustworthy because the authority
// co-signed the identical digest.
func RecoverSigners(terms *SaleTerms, creatorSig, authoritySig []byte, trustedAuthority common.Address) (common.Address, error) {
	digest, err := saleDigest(terms)
	if err != nil {
		return common.Address{}, err
	}
	authority, err := recoverAddress(digest, authoritySig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidAuthoritySignature, err)
	}
	if authority != trustedAuthority {
		return common.Address{}, ErrInvalidAuthoritySignature
	}
	creator, err := recoverAddress(digest, creatorSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidCreatorSignature, err)
	}
	return creator, nil
}

func recoverAddress(digest, sig []byte) (common.Address, error) {
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
