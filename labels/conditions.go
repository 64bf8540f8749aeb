package labels

import (
	"fmt"
	"strings"
)

// Weather is the weather condition an image was captured in.
type Weather int

const (
	WeatherUnknown Weather = iota
	Sunny
	Cloudy
	Rainy
	Snowy
	Foggy
)

const NumWeather = int(Foggy) + 1

var weatherNames = [NumWeather]string{"Unknown", "Sunny", "Cloudy", "Rainy", "Snowy", "Foggy"}

func (w Weather) String() string {
	if w < 0 || int(w) >= NumWeather {
		return fmt.Sprintf("Weather(%d)", int(w))
	}
	return weatherNames[w]
}

// ParseWeather accepts the capitalized names used in info.json and the
// annotation files. Matching is case-insensitive.
func ParseWeather(name string) (Weather, error) {
	name = strings.TrimSpace(name)
	for i, n := range weatherNames {
		if strings.EqualFold(n, name) {
			return Weather(i), nil
		}
	}
	return WeatherUnknown, fmt.Errorf("%w: %q", ErrUnknownWeather, name)
}

func AllWeather() []Weather {
	all := make([]Weather, NumWeather)
	for i := range all {
		all[i] = Weather(i)
	}
	return all
}

// Light is the lighting condition an image was captured in.
type Light int

const (
	LightUnknown Light = iota
	Daylight
	Twilight
	Dark
)

const NumLight = int(Dark) + 1

var lightNames = [NumLight]string{"Unknown", "Daylight", "Twilight", "Dark"}

func (l Light) String() string {
	if l < 0 || int(l) >= NumLight {
		return fmt.Sprintf("Light(%d)", int(l))
	}
	return lightNames[l]
}

func ParseLight(name string) (Light, error) {
	name = strings.TrimSpace(name)
	for i, n := range lightNames {
		if strings.EqualFold(n, name) {
			return Light(i), nil
		}
	}
	return LightUnknown, fmt.Errorf("%w: %q", ErrUnknownLight, name)
}

func AllLight() []Light {
	all := make([]Light, NumLight)
	for i := range all {
		all[i] = Light(i)
	}
	return all
}
