package history

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

var nameAdjectives = []string{
	"thrifty", "curious", "eager", "patient", "picky", "loyal", "casual", "busy",
	"early", "late", "quiet", "cheerful", "careful", "lucky", "frugal", "bold",
	"sunny", "misty", "calm", "swift", "gentle", "keen", "merry", "brisk",
	"amber", "coral", "indigo", "jade", "silver", "golden", "violet", "crimson",
}

var nameNouns = []string{
	"browser", "shopper", "visitor", "bargain", "basket", "parcel", "voucher", "receipt",
	"coupon", "ledger", "counter", "crate", "carton", "trolley", "invoice", "market",
	"bazaar", "kiosk", "stall", "vendor", "buyer", "courier", "package", "bundle",
}

// NameGenerator hands out names for anonymous dashboard visitors.
type NameGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewNameGenerator() *NameGenerator {
	seed := uint64(time.Now().UnixNano())
	return &NameGenerator{rng: rand.New(rand.NewPCG(seed, seed>>7))}
}

// Generate returns a name like "thrifty-parcel-07". Safe for concurrent use.
func (g *NameGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return pickName(g.rng)
}

// NameFromSeed returns the same name for the same seed.
func NameFromSeed(seed uint64) string {
	return pickName(rand.New(rand.NewPCG(seed, 0)))
}

func pickName(rng *rand.Rand) string {
	return fmt.Sprintf("%s-%s-%02d",
		nameAdjectives[rng.IntN(len(nameAdjectives))],
		nameNouns[rng.IntN(len(nameNouns))],
		rng.IntN(100))
}
