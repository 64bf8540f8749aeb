package labels

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownLabel   = errors.New("unknown signal label")
	ErrUnknownWeather = errors.New("unknown weather condition")
	ErrUnknownLight   = errors.New("unknown light condition")
)

// Label is a GERALD signal class. The numeric value is the class id written
// into target rows and must not be reordered.
type Label int

const (
	// Main signals
	Hp0 Label = iota
	Hp0HV
	Hp0Ks
	Hp0Sh
	Hp1
	Hp2
	Vr0
	Vr1
	Vr2
	Ks1
	Ks2
	// Mast signs
	MastSignWRW
	MastSignWYWYW
	MastSignYTriangle
	// Electrical signs
	El6
	// Secondary signals
	Ne1
	Ne2
	Ne3_1
	Ne3_2
	Ne3_3
	Ne3_4
	Ne3_5
	Ne4
	Ne5
	Ne6
	Ne7a
	Ne7b
	// Low speed signals
	Lf2
	Lf3
	Lf6
	Lf7
	// Shunting signals
	Ra10
	// Protection signals
	Sh0
	Sh1
	Sh2
	// Assignment signals
	So20Right
	So20Left
	// Switch signals
	Wn1
	Wn2
	// Additional signals
	Zs2
	Zs2v
	Zs3
	Zs3v
	Zs6
	ZsOff
	// Other signals
	HectometerSign
	ICE
	LZB
	// Platform signals
	PlatformDisplay
	PlatformTrackSign
	PlatformWarnSign
	PlatformTextSign
	RideIndicatorOff
	RideIndicator1
	RideIndicator2
	// Other
	SignBack
	SignalBack
	SignalOff
	SignalIdentifierSign
	SignalInvalid
	TrafficSign
	TrafficLight
)

// NumLabels is the number of signal classes.
const NumLabels = int(TrafficLight) + 1

// Names as they appear in the annotation files.
var labelNames = [NumLabels]string{
	"Hp_0", "Hp_0_HV", "Hp_0_Ks", "Hp_0_Sh", "Hp_1", "Hp_2",
	"Vr_0", "Vr_1", "Vr_2", "Ks_1", "Ks_2",
	"Mast_Sign_WRW", "Mast_Sign_WYWYW", "Mast_Sign_Y_Triangle",
	"El_6",
	"Ne_1", "Ne_2", "Ne_3_1", "Ne_3_2", "Ne_3_3", "Ne_3_4", "Ne_3_5",
	"Ne_4", "Ne_5", "Ne_6", "Ne_7a", "Ne_7b",
	"Lf_2", "Lf_3", "Lf_6", "Lf_7",
	"Ra_10",
	"Sh_0", "Sh_1", "Sh_2",
	"So_20_Right", "So_20_Left",
	"Wn_1", "Wn_2",
	"Zs_2", "Zs_2v", "Zs_3", "Zs_3v", "Zs_6", "Zs_Off",
	"Hectometer_Sign", "ICE", "LZB",
	"Platform_Display", "Platform_Track_Sign", "Platform_Warn_Sign", "Platform_Text_Sign",
	"Ride_Indicator_Off", "Ride_Indicator_1", "Ride_Indicator_2",
	"Sign_Back", "Signal_Back", "Signal_Off", "Signal_Identifier_Sign", "Signal_Invalid",
	"Traffic_Sign", "Traffic_Light",
}

var labelByName = func() map[string]Label {
	m := make(map[string]Label, NumLabels)
	for i, name := range labelNames {
		m[name] = Label(i)
	}
	return m
}()

func (l Label) Valid() bool {
	return l >= 0 && int(l) < NumLabels
}

func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// ParseLabel resolves a class name such as "Hp_0" or "Zs_3v".
func ParseLabel(name string) (Label, error) {
	l, ok := labelByName[strings.TrimSpace(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}
	return l, nil
}

// All returns every label in id order.
func All() []Label {
	all := make([]Label, NumLabels)
	for i := range all {
		all[i] = Label(i)
	}
	return all
}
