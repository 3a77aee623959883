package clock

import (
	"fmt"
	"strings"

	"github.com/louisbranch/crewledger/internal/ledger/rules"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// Clamp bounds segments to [0, limit].
func Clamp(segments, limit int) int {
	return min(max(segments, 0), limit)
}

// ValidateSize requires one of the configured clock sizes.
func ValidateSize(r rules.Rules, size int) error {
	if !r.ValidClockSize(size) {
		return apperrors.WithMetadata(apperrors.CodeClockSizeInvalid,
			fmt.Sprintf("clock size must be one of %v", r.ClockSizes),
			map[string]string{"size": fmt.Sprint(size)})
	}
	return nil
}

// ValidateCreate checks a new clock in isolation.
func ValidateCreate(r rules.Rules, p CreatePayload) error {
	if strings.TrimSpace(p.ID) == "" {
		return apperrors.New(apperrors.CodeClockIDRequired, "clock id is required")
	}
	if strings.TrimSpace(p.EntityID) == "" {
		return apperrors.New(apperrors.CodeClockOwnerRequired, "clock owner is required")
	}
	if !ValidType(p.ClockType) {
		return apperrors.New(apperrors.CodeClockTypeInvalid, "clock type is invalid: "+string(p.ClockType))
	}
	if p.ClockType == TypeHarm && strings.TrimSpace(p.Subtype) == "" {
		return apperrors.New(apperrors.CodeClockSubtypeEmpty, "harm clocks need a subtype")
	}
	return ValidateSize(r, p.MaxSegments)
}

// ValidateAmount rejects negative segment deltas.
func ValidateAmount(amount int) error {
	if amount < 0 {
		return apperrors.New(apperrors.CodeClockAmountInvalid,
			fmt.Sprintf("segment amount must not be negative: %d", amount))
	}
	return nil
}

// ValidateRepurpose allows only harm clocks to take a new subtype.
func ValidateRepurpose(c Clock, subtype string) error {
	if c.ClockType != TypeHarm {
		return apperrors.New(apperrors.CodeClockNotRepurposable, "only harm clocks can be repurposed")
	}
	if strings.TrimSpace(subtype) == "" {
		return apperrors.New(apperrors.CodeClockSubtypeEmpty, "harm clocks need a subtype")
	}
	return nil
}
