// Package seeder fills tables with generated rows.
package seeder

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Generator produces fake values for seed rows.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))}
}

// NewSeededGenerator returns a Generator whose numeric values are reproducible.
// Text values come from faker and are not affected by the seed.
func NewSeededGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed))}
}

func (g *Generator) Name() string      { return faker.Name() }
func (g *Generator) FirstName() string { return faker.FirstName() }
func (g *Generator) LastName() string  { return faker.LastName() }
func (g *Generator) Email() string     { return faker.Email() }
func (g *Generator) Username() string  { return faker.Username() }
func (g *Generator) Phone() string     { return faker.Phonenumber() }
func (g *Generator) Word() string      { return faker.Word() }
func (g *Generator) Sentence() string  { return faker.Sentence() }
func (g *Generator) Paragraph() string { return faker.Paragraph() }
func (g *Generator) URL() string       { return faker.URL() }
func (g *Generator) UUID() string      { return uuid.NewString() }

// Date returns a YYYY-MM-DD string.
func (g *Generator) Date() string { return faker.Date() }

// Timestamp returns a YYYY-MM-DD HH:MM:SS string.
func (g *Generator) Timestamp() string { return faker.Timestamp() }

// Int returns a value in [min, max].
func (g *Generator) Int(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + g.rnd.IntN(max-min+1)
}

// Float returns a value in [min, max) rounded to precision decimals.
func (g *Generator) Float(min, max float64, precision int) float64 {
	if max < min {
		min, max = max, min
	}
	val := min + g.rnd.Float64()*(max-min)
	factor := math.Pow10(precision)
	return math.Round(val*factor) / factor
}

func (g *Generator) Bool() bool { return g.rnd.IntN(2) == 1 }

// Pick returns one of values, or nil when none are given.
func (g *Generator) Pick(values ...any) any {
	if len(values) == 0 {
		return nil
	}
	return values[g.rnd.IntN(len(values))]
}

// Fake resolves a kind such as "email", "int:1:10", "float:0:5:1" or
// "pick:draft:published" to a value.
func (g *Generator) Fake(kind string) (any, error) {
	parts := strings.Split(strings.TrimSpace(kind), ":")
	name, args := strings.ToLower(parts[0]), parts[1:]

	switch name {
	case "name":
		return g.Name(), nil
	case "first_name":
		return g.FirstName(), nil
	case "last_name":
		return g.LastName(), nil
	case "email":
		return g.Email(), nil
	case "username":
		return g.Username(), nil
	case "phone":
		return g.Phone(), nil
	case "word":
		return g.Word(), nil
	case "sentence":
		return g.Sentence(), nil
	case "paragraph", "text":
		return g.Paragraph(), nil
	case "url":
		return g.URL(), nil
	case "uuid":
		return g.UUID(), nil
	case "date":
		return g.Date(), nil
	case "timestamp", "datetime":
		return g.Timestamp(), nil
	case "now":
		return time.Now().Format(time.DateTime), nil
	case "bool", "boolean":
		return g.Bool(), nil
	case "int", "integer":
		bounds, err := intArgs(args, 1, 100)
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		return g.Int(bounds[0], bounds[1]), nil
	case "float", "decimal":
		return g.floatKind(kind, args)
	case "pick":
		if len(args) == 0 {
			return nil, fmt.Errorf("kind %q: pick needs at least one value", kind)
		}
		values := make([]any, len(args))
		for i, a := range args {
			values[i] = a
		}
		return g.Pick(values...), nil
	}
	return nil, fmt.Errorf("unknown fake kind %q", kind)
}

func (g *Generator) floatKind(kind string, args []string) (any, error) {
	lo, hi, precision := 0.0, 100.0, 2
	var err error
	if len(args) > 0 {
		if lo, err = cast.ToFloat64E(args[0]); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
	}
	if len(args) > 1 {
		if hi, err = cast.ToFloat64E(args[1]); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
	}
	if len(args) > 2 {
		if precision, err = strconv.Atoi(args[2]); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
	}
	return g.Float(lo, hi, precision), nil
}

func intArgs(args []string, lo, hi int) ([2]int, error) {
	out := [2]int{lo, hi}
	for i := 0; i < len(args) && i < 2; i++ {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}
