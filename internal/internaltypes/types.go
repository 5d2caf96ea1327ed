package internaltypes

import "fmt"

var (
	ErrInvalidChannelValue = fmt.Errorf("invalid channel value: possible ones are: '%s', '%s', '%s'", EMAIL, WHATSAPP, PUSH)
	ErrInvalidStatusValue  = fmt.Errorf("invalid status value: possible ones are: '%s', '%s', '%s'", SENT, FAILED, SKIPPED)
	ErrInvalidPlanValue    = fmt.Errorf("invalid plan value: possible ones are: '%s', '%s'", FREE, PRO)
	ErrInvalidKindValue    = fmt.Errorf("invalid document kind value: possible ones are: '%s', '%s', '%s', '%s', '%s'", SOAT, TECNO, SEGURO, IMPUESTO, OTRO)
)

const (
	// EMAIL is the constant value for the email channel string value
	EMAIL = "EMAIL"
	// WHATSAPP is the constant value for the whatsapp channel string value
	WHATSAPP = "WHATSAPP"
	// PUSH is the constant value for the push channel string value
	PUSH = "PUSH"
)

var (
	ChannelEmail    = Channel{val: EMAIL}
	ChannelWhatsApp = Channel{val: WHATSAPP}
	ChannelPush     = Channel{val: PUSH}
)

// Channel is a closed notification delivery mechanism.
type Channel struct {
	val string
}

func (c Channel) String() string {
	return c.val
}

func ChannelFromString(val string) (Channel, error) {
	switch val {
	case EMAIL, WHATSAPP, PUSH:
		return Channel{val: val}, nil
	default:
		return Channel{}, ErrInvalidChannelValue
	}
}

const (
	SENT    = "SENT"
	FAILED  = "FAILED"
	SKIPPED = "SKIPPED"
)

var (
	StatusSent    = Status{val: SENT}
	StatusFailed  = Status{val: FAILED}
	StatusSkipped = Status{val: SKIPPED}
)

// Status is the outcome of one notification attempt.
type Status struct {
	val string
}

func (s Status) String() string {
	return s.val
}

func StatusFromString(val string) (Status, error) {
	switch val {
	case SENT, FAILED, SKIPPED:
		return Status{val: val}, nil
	default:
		return Status{}, ErrInvalidStatusValue
	}
}

const (
	FREE = "FREE"
	PRO  = "PRO"
)

var (
	PlanFree = PlanTier{val: FREE}
	PlanPro  = PlanTier{val: PRO}
)

// PlanTier gates the paid channels.
type PlanTier struct {
	val string
}

func (p PlanTier) String() string {
	return p.val
}

func PlanTierFromString(val string) (PlanTier, error) {
	switch val {
	case FREE, PRO:
		return PlanTier{val: val}, nil
	default:
		return PlanTier{}, ErrInvalidPlanValue
	}
}

const (
	SOAT     = "SOAT"
	TECNO    = "TECNO"
	SEGURO   = "SEGURO"
	IMPUESTO = "IMPUESTO"
	OTRO     = "OTRO"
)

var kindDisplay = map[string]string{
	SOAT:     "SOAT",
	TECNO:    "Tecnomecánica",
	SEGURO:   "Seguro",
	IMPUESTO: "Impuesto",
	OTRO:     "Otro",
}

// DocumentKind is the tracked vehicle-document type.
type DocumentKind struct {
	val string
}

func (k DocumentKind) String() string {
	return k.val
}

// Display returns the human-readable name used in outgoing messages.
func (k DocumentKind) Display() string {
	return kindDisplay[k.val]
}

func DocumentKindFromString(val string) (DocumentKind, error) {
	switch val {
	case SOAT, TECNO, SEGURO, IMPUESTO, OTRO:
		return DocumentKind{val: val}, nil
	default:
		return DocumentKind{}, ErrInvalidKindValue
	}
}
