package dataset

import (
	"encoding/json"
	"os"

	"github.com/Tutortoise/gerald-loader/labels"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// InfoEntry is the side-loaded metadata for one image.
type InfoEntry struct {
	Weather   labels.Weather
	Light     labels.Light
	Author    string
	AuthorURL string
	SourceURL string
	PHash     string
}

// InfoTable maps a source filename (with extension) to its metadata.
type InfoTable map[string]InfoEntry

// LoadInfo reads info.json. Values are loosely typed in the published
// file, so every field is coerced to a string first.
func LoadInfo(path string) (InfoTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read info table")
	}
	return ParseInfo(data)
}

func ParseInfo(data []byte) (InfoTable, error) {
	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode info table")
	}

	table := make(InfoTable, len(raw))
	for name, fields := range raw {
		entry := InfoEntry{
			Author:    cast.ToString(fields["author"]),
			AuthorURL: cast.ToString(fields["author url"]),
			SourceURL: cast.ToString(fields["source url"]),
			PHash:     cast.ToString(fields["pHash"]),
		}

		if w, ok := fields["weather"]; ok {
			weather, err := labels.ParseWeather(cast.ToString(w))
			if err != nil {
				return nil, errors.Wrapf(err, "info for %s", name)
			}
			entry.Weather = weather
		}
		if l, ok := fields["light"]; ok {
			light, err := labels.ParseLight(cast.ToString(l))
			if err != nil {
				return nil, errors.Wrapf(err, "info for %s", name)
			}
			entry.Light = light
		}
		table[name] = entry
	}
	return table, nil
}
