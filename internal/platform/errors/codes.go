// Package errors provides structured, coded errors for the ledger domain.
package errors

// Code is a machine-readable error code.
type Code string

// Kind groups codes into the taxonomy callers branch on.
type Kind string

const (
	KindUnknown             Kind = "unknown"
	KindNotFound            Kind = "not-found"
	KindCharacterValidation Kind = "character-validation"
	KindEquipmentValidation Kind = "equipment-validation"
	KindCrewValidation      Kind = "crew-validation"
	KindClockValidation     Kind = "clock-validation"
	KindRoundValidation     Kind = "round-validation"
	KindCommandValidation   Kind = "command-validation"
)

// IsValidation reports whether the kind is one of the validation kinds.
func (k Kind) IsValidation() bool {
	switch k {
	case KindCharacterValidation,
		KindEquipmentValidation,
		KindCrewValidation,
		KindClockValidation,
		KindRoundValidation,
		KindCommandValidation:
		return true
	default:
		return false
	}
}

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Not-found errors
	CodeCharacterNotFound Code = "CHARACTER_NOT_FOUND"
	CodeCrewNotFound      Code = "CREW_NOT_FOUND"
	CodeClockNotFound     Code = "CLOCK_NOT_FOUND"
	CodeEquipmentNotFound Code = "EQUIPMENT_NOT_FOUND"
	CodeTraitNotFound     Code = "TRAIT_NOT_FOUND"
	CodeRoundNotFound     Code = "ROUND_STATE_NOT_FOUND"

	// Command envelope errors
	CodeCommandTypeUnknown    Code = "COMMAND_TYPE_UNKNOWN"
	CodeCommandPayloadInvalid Code = "COMMAND_PAYLOAD_INVALID"
	CodeCommandVersion        Code = "COMMAND_VERSION_UNSUPPORTED"

	// Character errors
	CodeCharacterIDRequired         Code = "CHARACTER_ID_REQUIRED"
	CodeCharacterAlreadyExists      Code = "CHARACTER_ALREADY_EXISTS"
	CodeCharacterNameEmpty          Code = "CHARACTER_NAME_EMPTY"
	CodeCharacterTraitsMissing      Code = "CHARACTER_TRAITS_MISSING"
	CodeCharacterTraitInvalid       Code = "CHARACTER_TRAIT_INVALID"
	CodeCharacterTraitDuplicate     Code = "CHARACTER_TRAIT_DUPLICATE"
	CodeCharacterGroupCount         Code = "CHARACTER_GROUP_TRAIT_COUNT"
	CodeCharacterApproachInvalid    Code = "CHARACTER_APPROACH_INVALID"
	CodeCharacterDotsOutOfRange     Code = "CHARACTER_DOTS_OUT_OF_RANGE"
	CodeCharacterInsufficientDots   Code = "CHARACTER_INSUFFICIENT_UNALLOCATED_DOTS"
	CodeCharacterDotPoolExceeded    Code = "CHARACTER_DOT_POOL_EXCEEDED"
	CodeCharacterRallyUnavailable   Code = "CHARACTER_RALLY_UNAVAILABLE"
	CodeCharacterLoadLimitInvalid   Code = "CHARACTER_LOAD_LIMIT_INVALID"
	CodeCharacterLoadLimitBelowLoad Code = "CHARACTER_LOAD_LIMIT_BELOW_LOAD"

	// Equipment errors
	CodeEquipmentIDRequired      Code = "EQUIPMENT_ID_REQUIRED"
	CodeEquipmentDuplicate       Code = "EQUIPMENT_DUPLICATE"
	CodeEquipmentNameEmpty       Code = "EQUIPMENT_NAME_EMPTY"
	CodeEquipmentTierInvalid     Code = "EQUIPMENT_TIER_INVALID"
	CodeEquipmentSlotsInvalid    Code = "EQUIPMENT_SLOTS_INVALID"
	CodeEquipmentModifierInvalid Code = "EQUIPMENT_MODIFIER_CONFLICT"
	CodeEquipmentLocked          Code = "EQUIPMENT_LOCKED"
	CodeEquipmentConsumed        Code = "EQUIPMENT_CONSUMED"

	// Crew errors
	CodeCrewIDRequired        Code = "CREW_ID_REQUIRED"
	CodeCrewAlreadyExists     Code = "CREW_ALREADY_EXISTS"
	CodeCrewNameEmpty         Code = "CREW_NAME_EMPTY"
	CodeCrewMemberDuplicate   Code = "CREW_MEMBER_DUPLICATE"
	CodeCrewMemberMissing     Code = "CREW_MEMBER_MISSING"
	CodeCrewMomentumInvalid   Code = "CREW_MOMENTUM_INVALID"
	CodeCrewMomentumNotEnough Code = "CREW_MOMENTUM_INSUFFICIENT"

	// Clock errors
	CodeClockIDRequired      Code = "CLOCK_ID_REQUIRED"
	CodeClockAlreadyExists   Code = "CLOCK_ALREADY_EXISTS"
	CodeClockOwnerRequired   Code = "CLOCK_OWNER_REQUIRED"
	CodeClockTypeInvalid     Code = "CLOCK_TYPE_INVALID"
	CodeClockSizeInvalid     Code = "CLOCK_SIZE_INVALID"
	CodeClockAmountInvalid   Code = "CLOCK_AMOUNT_INVALID"
	CodeClockSubtypeEmpty    Code = "CLOCK_SUBTYPE_EMPTY"
	CodeClockNotRepurposable Code = "CLOCK_NOT_REPURPOSABLE"
	CodeClockHarmCapReached  Code = "CLOCK_HARM_CAP_REACHED"

	// Round state errors
	CodeRoundPhaseInvalid      Code = "ROUND_PHASE_INVALID"
	CodeRoundTransitionInvalid Code = "ROUND_TRANSITION_INVALID"
	CodeRoundPlanInvalid       Code = "ROUND_PLAN_INVALID"
)

// Kind maps domain codes to their taxonomy bucket.
func (c Code) Kind() Kind {
	switch c {
	case CodeCharacterNotFound,
		CodeCrewNotFound,
		CodeClockNotFound,
		CodeEquipmentNotFound,
		CodeTraitNotFound,
		CodeRoundNotFound:
		return KindNotFound

	case CodeCommandTypeUnknown,
		CodeCommandPayloadInvalid,
		CodeCommandVersion:
		return KindCommandValidation

	case CodeCharacterIDRequired,
		CodeCharacterAlreadyExists,
		CodeCharacterNameEmpty,
		CodeCharacterTraitsMissing,
		CodeCharacterTraitInvalid,
		CodeCharacterTraitDuplicate,
		CodeCharacterGroupCount,
		CodeCharacterApproachInvalid,
		CodeCharacterDotsOutOfRange,
		CodeCharacterInsufficientDots,
		CodeCharacterDotPoolExceeded,
		CodeCharacterRallyUnavailable,
		CodeCharacterLoadLimitInvalid,
		CodeCharacterLoadLimitBelowLoad:
		return KindCharacterValidation

	case CodeEquipmentIDRequired,
		CodeEquipmentDuplicate,
		CodeEquipmentNameEmpty,
		CodeEquipmentTierInvalid,
		CodeEquipmentSlotsInvalid,
		CodeEquipmentModifierInvalid,
		CodeEquipmentLocked,
		CodeEquipmentConsumed:
		return KindEquipmentValidation

	case CodeCrewIDRequired,
		CodeCrewAlreadyExists,
		CodeCrewNameEmpty,
		CodeCrewMemberDuplicate,
		CodeCrewMemberMissing,
		CodeCrewMomentumInvalid,
		CodeCrewMomentumNotEnough:
		return KindCrewValidation

	case CodeClockIDRequired,
		CodeClockAlreadyExists,
		CodeClockOwnerRequired,
		CodeClockTypeInvalid,
		CodeClockSizeInvalid,
		CodeClockAmountInvalid,
		CodeClockSubtypeEmpty,
		CodeClockNotRepurposable,
		CodeClockHarmCapReached:
		return KindClockValidation

	case CodeRoundPhaseInvalid,
		CodeRoundTransitionInvalid,
		CodeRoundPlanInvalid:
		return KindRoundValidation

	default:
		return KindUnknown
	}
}
