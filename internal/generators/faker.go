package generators

import (
	"fmt"
	"math/rand"

	"github.com/go-faker/faker/v4"

	"github.com/rowforge/rowforge/internal/domain"
)

// compilePool resolves a string hint naming a built-in value pool for String
// columns. The faker-backed pools draw from faker's own source and are
// therefore excluded from the fixed-seed determinism guarantee; the city pool
// samples a fixed literal list with the run rng and stays deterministic.
func compilePool(col domain.Column, kind domain.Kind, name string) (Generator, error) {
	if kind.Base != domain.KindString {
		return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("pool hint %q not applicable to %s kind", name, kind.Base)}
	}
	if kind.FixedLen > 0 {
		return nil, &domain.HintShapeError{Column: col.Name, Reason: "pool hints are not supported on FixedString columns"}
	}
	switch name {
	case "name", "username", "email", "word":
		return fakerPool{flavor: name}, nil
	case "city":
		return cityPool{}, nil
	default:
		return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("unknown pool %q (want name, username, email, word or city)", name)}
	}
}

type fakerPool struct {
	flavor string
}

func (g fakerPool) Next(_ *rand.Rand) (interface{}, error) {
	switch g.flavor {
	case "name":
		return faker.Name(), nil
	case "username":
		return faker.Username(), nil
	case "email":
		return faker.Email(), nil
	default:
		return faker.Word(), nil
	}
}

var cities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "Seattle",
	"Denver", "Boston", "Detroit", "Portland", "Las Vegas",
	"London", "Paris", "Tokyo", "Berlin", "Madrid",
	"Rome", "Amsterdam", "Vienna", "Prague", "Barcelona",
	"Stockholm", "Copenhagen", "Oslo", "Helsinki", "Dublin",
}

type cityPool struct{}

func (cityPool) Next(rng *rand.Rand) (interface{}, error) {
	return cities[rng.Intn(len(cities))], nil
}
