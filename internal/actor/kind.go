package actor

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind enumerates the zombie variants.
type Kind uint8

const (
	KindShambler Kind = iota // Baseline walker
	KindRunner               // Fast, fragile
	KindBrute                // Slow, tough
)

func (k Kind) String() string {
	switch k {
	case KindShambler:
		return "shambler"
	case KindRunner:
		return "runner"
	case KindBrute:
		return "brute"
	default:
		return "unknown"
	}
}

// kindRegistry maps the persisted discriminator string to a constructor.
// Resolved at link time; new variants register here and nowhere else.
var kindRegistry = map[string]func() *Zombie{
	"shambler": func() *Zombie { return newZombie(KindShambler, DefaultMaxAP, 6) },
	"runner":   func() *Zombie { return newZombie(KindRunner, 12, 4) },
	"brute":    func() *Zombie { return newZombie(KindBrute, 6, 12) },
}

func newZombie(kind Kind, maxAP, hp int) *Zombie {
	return &Zombie{
		UUID:  uuid.New(),
		Kind:  kind,
		MaxAP: maxAP,
		AP:    maxAP,
		HP:    hp,
	}
}

// NewZombie constructs a fresh zombie of the given kind with defaults.
func NewZombie(kind Kind) *Zombie {
	z, err := FromDiscriminator(kind.String())
	if err != nil {
		// Every declared Kind has a registry entry; fall back to baseline.
		return newZombie(KindShambler, DefaultMaxAP, 6)
	}
	return z
}

// FromDiscriminator rebuilds a zombie shell from a stored kind string.
// Unknown discriminators are an error, not a silent default.
func FromDiscriminator(kind string) (*Zombie, error) {
	ctor, ok := kindRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("actor: unknown zombie kind %q", kind)
	}
	return ctor(), nil
}
