package mindmap

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDGenerator hands out node ids. Implementations decide whether ids are
// guaranteed unique.
type IDGenerator interface {
	NextID() string
}

const (
	StrategyShort = "short"
	StrategyUUID  = "uuid"
)

// ShortIDAlphabet is the 62-symbol alphanumeric alphabet for short ids.
const ShortIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ShortIDLength is the length of a short id.
const ShortIDLength = 4

// ShortIDs produces 4-character alphanumeric ids. Two ids collide with
// probability 1/62^4; nothing guards against it.
type ShortIDs struct{}

func (ShortIDs) NextID() string {
	id, err := gonanoid.Generate(ShortIDAlphabet, ShortIDLength)
	if err != nil {
		// Generate only fails on an invalid alphabet or a broken entropy source.
		panic(fmt.Sprintf("mindmap: short id: %v", err))
	}
	return id
}

// UUIDs produces random UUIDv4 strings.
type UUIDs struct{}

func (UUIDs) NextID() string {
	return uuid.NewString()
}

// Counter produces "n1", "n2", ... and is safe for concurrent use.
type Counter struct {
	Prefix string
	n      atomic.Uint64
}

func (c *Counter) NextID() string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "n"
	}
	return prefix + strconv.FormatUint(c.n.Add(1), 10)
}

// NewIDGenerator maps a configured strategy name to a generator.
func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strategy {
	case "", StrategyShort:
		return ShortIDs{}, nil
	case StrategyUUID:
		return UUIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
