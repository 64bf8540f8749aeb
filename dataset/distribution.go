package dataset

import (
	"log"

	"github.com/Tutortoise/gerald-loader/labels"
	"github.com/Tutortoise/gerald-loader/models"
)

type SignalCount struct {
	Relevant   int
	Irrelevant int
	Total      int
}

// Distribution summarizes the labels and capture conditions of a subset.
// Weather and light are counted per image, signals per object.
type Distribution struct {
	Images  int
	Targets int
	Signals map[labels.Label]SignalCount
	Weather map[labels.Weather]int
	Light   map[labels.Light]int
}

func ComputeDistribution(annotations []*models.Annotation) Distribution {
	d := Distribution{
		Images:  len(annotations),
		Signals: make(map[labels.Label]SignalCount),
		Weather: make(map[labels.Weather]int),
		Light:   make(map[labels.Light]int),
	}

	for _, an := range annotations {
		d.Weather[an.Weather]++
		d.Light[an.Light]++

		for _, o := range an.Objects() {
			c := d.Signals[o.Label]
			if o.Relevant {
				c.Relevant++
			} else {
				c.Irrelevant++
			}
			c.Total++
			d.Signals[o.Label] = c
			d.Targets++
		}
	}
	return d
}

// Log prints the non-empty rows in enumeration order.
func (d Distribution) Log(title string) {
	log.Printf("Signals in the %s:", title)
	for _, l := range labels.All() {
		c, ok := d.Signals[l]
		if !ok {
			continue
		}
		log.Printf("%-20s Rel: %5d  Irrel: %5d  Total: %5d", l, c.Relevant, c.Irrelevant, c.Total)
	}
	log.Printf("Total number of targets: %d", d.Targets)

	for _, w := range labels.AllWeather() {
		if n := d.Weather[w]; n > 0 {
			log.Printf("Weather %-10s %5d images", w, n)
		}
	}
	for _, l := range labels.AllLight() {
		if n := d.Light[l]; n > 0 {
			log.Printf("Light %-12s %5d images", l, n)
		}
	}
}
