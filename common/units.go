package common

// Units converts between the meter-based tuning values in the prefabs and
// the pixel space the simulation runs in.
type Units struct {
	PixelsPerMeter float64
}

func NewUnits(pixelsPerMeter float64) Units {
	if pixelsPerMeter <= 0 {
		pixelsPerMeter = DefaultPixelsPerMeter
	}
	return Units{PixelsPerMeter: pixelsPerMeter}
}

// Pixels converts a length (or a speed, or an acceleration) from meters.
func (u Units) Pixels(meters float64) float64 {
	return meters * u.PixelsPerMeter
}

func (u Units) Meters(pixels float64) float64 {
	return pixels / u.PixelsPerMeter
}

// AreaDensity converts kg/m² to kg/px².
func (u Units) AreaDensity(kgPerSquareMeter float64) float64 {
	return kgPerSquareMeter / (u.PixelsPerMeter * u.PixelsPerMeter)
}

const DefaultPixelsPerMeter = 100.0
