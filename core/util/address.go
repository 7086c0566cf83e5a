package util

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// EthereumAddress wraps a validated account identifier. Comparison is
// case-insensitive, so the canonical form is lowercase hex.
type EthereumAddress struct {
	address string
}

// NewEthereumAddressFromString parses and validates a hex account identifier.
func NewEthereumAddressFromString(s string) (EthereumAddress, error) {
	if !addressPattern.MatchString(s) {
		return EthereumAddress{}, errors.Errorf("invalid ethereum address: %q", s)
	}
	return EthereumAddress{address: strings.ToLower(s)}, nil
}

// IsValidAddress reports whether s is a well-formed account identifier.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// Address returns the lowercase hex representation.
func (a EthereumAddress) Address() string {
	return a.address
}

func (a EthereumAddress) String() string {
	return a.address
}

// Equal compares two addresses case-insensitively.
func (a EthereumAddress) Equal(other EthereumAddress) bool {
	return a.address == other.address
}

// SameAddress compares two raw identifiers case-insensitively without
// requiring both to parse.
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// EthereumAddressesToStrings converts a slice of EthereumAddress to their
// lowercase hex string representation.
func EthereumAddressesToStrings(addrs []EthereumAddress) []string {
	strs := make([]string, len(addrs))
	for i, a := range addrs {
		strs[i] = a.Address()
	}
	return strs
}
