package settlement

import (
	"strconv"
	"strings"

	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/crypto"
)

// PrefixDigits is the length of the creator-bound asset identifier prefix.
const PrefixDigits = 12

// DerivePrefix maps an address to the decimal digit prefix that asset
// identifiers originated by that address must carry. Each byte of
// Keccak256(addr) contributes its decimal numerals (1 to 3 digits) in hash
// order until the concatenation covers PrefixDigits characters; trailing
// hash bytes are never consumed. The result is the first PrefixDigits
// characters of that concatenation.
//
// The scheme is a protocol invariant: it is deliberately not a uniform base
// conversion, and previously committed asset identifiers depend on this
// exact digit sequence.
func DerivePrefix(addr common.Address) string {
	hash := crypto.Keccak256(addr.Bytes())
	var b strings.Builder
	for i := 0; i < len(hash) && b.Len() < PrefixDigits; i++ {
		b.WriteString(strconv.Itoa(int(hash[i])))
	}
	return b.String()[:PrefixDigits]
}

// ExtractLeadingDigits returns the first n characters of s, or the empty
// string when s is shorter than n. Callers pass the canonical decimal
// representation of an asset identifier.
func ExtractLeadingDigits(s string, n int) string {
	if len(s) < n {
		return ""
	}
	return s[:n]
}
