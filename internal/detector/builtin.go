package detector

// Builtin returns the full entity-detector set in evaluation order. The
// slice is freshly constructed per call so two engines never share
// mutable signature tables.
func Builtin() []Detector {
	return []Detector{
		NewInjectionDetector(),
		NewPoisoningDetector(),
		NewExfiltrationDetector(),
		NewSensitiveDetector(),
		NewEncodingDetector(),
		NewEscalationDetector(),
		NewContextDetector(),
		NewCrossOriginDetector(),
	}
}
