package sensor

import "math"

// Calibration constants recovered from original_source/pad_server/src/
// sensors.c's adc_sensor_val_conversion, frozen here as named values instead
// of inline magic numbers.
const (
	// ADS1115 full-scale range at PGA setting 0.
	adcFSR = 6.144
	adcMax = 32768.0

	// Pressure transducer: linear 1-5V -> 0..Pmax mPSI. Below 1V reads 0.
	pressureVMin = 1.0
	pressureVMax = 5.0

	// Thrust load cell: linear 0-5.053V -> 0..11120.5N.
	thrustVMin = 0.0
	thrustVMax = 5.053
	thrustNMax = 11120.5

	// Continuity: Schmitt threshold.
	continuityThresholdV = 1.0

	// Thermistor divider: 2948 Ohm reference, 4.945V supply.
	thermistorReferenceOhm = 2948.0
	thermistorSupplyV      = 4.945
)

// SteinhartCoefficients are the Steinhart-Hart A/B/C coefficients for one
// thermistor, recovered verbatim from sensors.c's per-sensor-id table.
type SteinhartCoefficients struct {
	A, B, C float64
}

// Thermistor1 and Thermistor2 are the two coefficient sets the source
// hard-codes by sensor_id (0 and otherwise).
var (
	Thermistor1 = SteinhartCoefficients{A: 1.403e-3, B: 2.373e-4, C: 9.827e-8}
	Thermistor2 = SteinhartCoefficients{A: 1.468e-3, B: 2.383e-4, C: 1.007e-7}
)

func mapValue(value, inMin, inMax, outMin, outMax float64) float64 {
	slope := (outMax - outMin) / (inMax - inMin)
	if slope == 0 {
		return 0
	}
	return outMin + slope*(value-inMin)
}

// ADCVolts converts a raw ADS1115 sample to volts at PGA setting 0.
func ADCVolts(raw int32) float64 {
	return (float64(raw) * adcFSR) / adcMax
}

// PMax is the per-sensor pressure transducer ceiling, in PSI
// (CalibratePressure scales it to mPSI); sensors 4 and
// 5 (0-indexed) read to a higher-range transducer than the rest, per
// sensors.c.
func PMax(sensorID uint8) float64 {
	if sensorID == 4 || sensorID == 5 {
		return 2500.0
	}
	return 1000.0
}

// CalibratePressure converts a transducer reading in volts to milli-PSI.
func CalibratePressure(volts float64, sensorID uint8) int32 {
	if volts < pressureVMin {
		return 0
	}
	return int32(1000 * mapValue(volts, pressureVMin, pressureVMax, 0.0, PMax(sensorID)))
}

// CalibrateThrust converts a load cell reading in volts to newtons.
func CalibrateThrust(volts float64) uint32 {
	n := mapValue(volts, thrustVMin, thrustVMax, 0.0, thrustNMax)
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// CalibrateContinuity applies the Schmitt threshold: above 1.0V reads
// continuous (true).
func CalibrateContinuity(volts float64) bool {
	return volts > continuityThresholdV
}

// CalibrateTemperature converts a thermistor divider reading in volts to
// millidegrees Celsius via the Steinhart-Hart equation.
func CalibrateTemperature(volts float64, coeff SteinhartCoefficients) int32 {
	if volts <= 0 {
		return 0
	}
	r := thermistorReferenceOhm / ((thermistorSupplyV / volts) - 1.0)
	if r <= 0 {
		return 0
	}
	lnR := math.Log(r)
	t := 1.0 / (coeff.A + coeff.B*lnR + coeff.C*lnR*lnR*lnR)
	celsius := t - 273.15
	return int32(celsius * 1000)
}
