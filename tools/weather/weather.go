// Package weather provides the get_weather tool.
// The default provider returns synthetic forecasts, stable per location.
package weather

import (
	"context"
	"math"
	"strings"

	"github.com/bibbit-ltd/tool-use/tools"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

const ToolName = "get_weather"

const (
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
)

var conditions = []string{"sunny", "cloudy", "overcast", "rain", "showers", "snow", "fog", "windy"}

// Request is the tool input.
type Request struct {
	Location string `json:"location" jsonschema:"description=The city and country such as Paris France" validate:"required"`
	Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit,description=The temperature unit (celsius by default)" validate:"omitempty,oneof=celsius fahrenheit"`
}

// Forecast is the tool result.
type Forecast struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Unit        string  `json:"unit"`
	Conditions  string  `json:"conditions"`
	Humidity    int     `json:"humidity"`
}

// Provider returns the current weather for a location.
type Provider interface {
	Forecast(ctx context.Context, location, unit string) (*Forecast, error)
}

// FakeProvider returns synthetic forecasts.
type FakeProvider struct{}

func (FakeProvider) Forecast(_ context.Context, location, unit string) (*Forecast, error) {
	faker := gofakeit.New(xxhash.Sum64String(strings.ToLower(location)))

	celsius := faker.Float64Range(-10, 35)
	temp := celsius
	if unit == UnitFahrenheit {
		temp = celsius*9/5 + 32
	}
	return &Forecast{
		Location:    location,
		Temperature: math.Round(temp*10) / 10,
		Unit:        unit,
		Conditions:  faker.RandomString(conditions),
		Humidity:    faker.Number(10, 100),
	}, nil
}

// New returns the get_weather tool, FakeProvider is used when p is nil.
func New(p Provider) (*tools.Definition, error) {
	if p == nil {
		p = FakeProvider{}
	}
	return tools.New(ToolName, "Get the current weather in a given location.",
		func(ctx context.Context, req *Request) (*Forecast, error) {
			unit := req.Unit
			if unit == "" {
				unit = UnitCelsius
			}
			f, err := p.Forecast(ctx, req.Location, unit)
			if err != nil {
				return nil, errors.WithMessagef(err, "forecast for %q", req.Location)
			}
			return f, nil
		})
}
