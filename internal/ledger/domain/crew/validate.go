package crew

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// ValidateName rejects blank crew names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.New(apperrors.CodeCrewNameEmpty, "crew name is required")
	}
	return nil
}

// ValidateMembers rejects blank or repeated character ids.
func ValidateMembers(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return apperrors.New(apperrors.CodeCharacterIDRequired, "character id is required")
		}
		if _, dup := seen[id]; dup {
			return apperrors.New(apperrors.CodeCrewMemberDuplicate, "character is already a member: "+id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidateAmount rejects negative momentum amounts.
func ValidateAmount(amount int) error {
	if amount < 0 {
		return apperrors.WithMetadata(apperrors.CodeCrewMomentumInvalid,
			fmt.Sprintf("momentum amount must not be negative: %d", amount),
			map[string]string{"amount": fmt.Sprint(amount)})
	}
	return nil
}

// ValidateSpend requires the crew to hold at least amount momentum.
func ValidateSpend(c Crew, amount int) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if c.CurrentMomentum < amount {
		return apperrors.WithMetadata(apperrors.CodeCrewMomentumNotEnough,
			fmt.Sprintf("not enough momentum: have %d, need %d", c.CurrentMomentum, amount),
			map[string]string{"have": fmt.Sprint(c.CurrentMomentum), "need": fmt.Sprint(amount)})
	}
	return nil
}
