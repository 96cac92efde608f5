package minter

import (
	"strings"

	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

// ValidationResult partitions a raw recipient list by address validity.
// Input order is preserved in both partitions; downstream mint sequence
// numbers depend on the stable ordering of Valid.
type ValidationResult struct {
	Valid   []entity.Recipient
	Invalid []entity.Recipient
}

// ValidateRecipients classifies each recipient by syntactic address validity
// on the given network. Unparseable entries are classified invalid, never
// returned as errors.
func ValidateRecipients(recipients []entity.Recipient, network common.Network) ValidationResult {
	result := ValidationResult{
		Valid:   make([]entity.Recipient, 0, len(recipients)),
		Invalid: make([]entity.Recipient, 0),
	}
	for _, recipient := range recipients {
		recipient.Address = strings.TrimSpace(recipient.Address)
		if isValidAddress(recipient.Address, network) {
			result.Valid = append(result.Valid, recipient)
		} else {
			result.Invalid = append(result.Invalid, recipient)
		}
	}
	return result
}

func isValidAddress(address string, network common.Network) bool {
	if address == "" {
		return false
	}
	_, err := cardano.DecodeAddress(address, network)
	return err == nil
}
