package models

// Column layout of a target row.
const (
	ColX = iota
	ColY
	ColW
	ColH
	ColLabel
	ColSlot
	NumCols
)

// Row is one box as [x_center, y_center, width, height, label_id, batch_slot].
type Row [NumCols]float32

// Targets holds the rows of one sample or batch.
type Targets []Row

func (t Targets) Clone() Targets {
	if t == nil {
		return nil
	}
	out := make(Targets, len(t))
	copy(out, t)
	return out
}

// Corners converts a row to [x_min, y_min, x_max, y_max].
func (r Row) Corners() [4]float32 {
	hw, hh := r[ColW]/2, r[ColH]/2
	return [4]float32{r[ColX] - hw, r[ColY] - hh, r[ColX] + hw, r[ColY] + hh}
}
