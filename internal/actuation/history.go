package actuation

// TorqueRecord is one sample of an actuator's output.
type TorqueRecord struct {
	Time            float64
	Direction       Direction
	Magnitudes      []float64
	// Torques is the per-element torque vector in the local frame. Only the
	// component on the actuator's axis is non-zero.
	Torques         [][3]float64
	ElementPosition []float64
}

// HistorySink receives periodic actuator samples. Implementations decide
// how much to retain.
type HistorySink interface {
	RecordTorque(rec TorqueRecord)
}
