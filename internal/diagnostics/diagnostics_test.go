package diagnostics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/actuation"
	"github.com/GazzolaLab/Elastica-RL-control/internal/body"
	"github.com/GazzolaLab/Elastica-RL-control/internal/rod"
)

func TestSeriesBounded(t *testing.T) {
	s := NewSeries[int](3)
	for i := 0; i < 5; i++ {
		s.Append(i)
	}
	if s.Len() != 3 || s.Dropped() != 2 {
		t.Errorf("len=%d dropped=%d, want 3 and 2", s.Len(), s.Dropped())
	}
	if got := s.Items(); got[0] != 0 || got[2] != 2 {
		t.Errorf("items = %v", got)
	}
}

func TestCapacity(t *testing.T) {
	if got := Capacity(100, 50, 10); got != 502 {
		t.Errorf("Capacity = %d, want 502", got)
	}
	if got := Capacity(10, 5, 0); got != 52 {
		t.Errorf("Capacity with zero skip = %d, want 52", got)
	}
}

func TestRecorderHistory(t *testing.T) {
	p := rod.DefaultParams()
	p.Elements = 10
	arm, err := rod.New(p)
	if err != nil {
		t.Fatal(err)
	}
	sphere := body.NewSphere(r3.Vec{X: 0.3, Y: 0.5}, 0.05)
	cyl, _ := body.NewCylinder(r3.Vec{}, r3.Vec{Z: 1}, r3.Vec{X: 1}, 0.5, 0.02)

	rec := NewRecorder(arm, sphere, []*body.Cylinder{cyl}, 4)
	for i := 0; i < 3; i++ {
		rec.Record(i, float64(i)*0.1)
	}
	rec.RecordTorque(actuation.TorqueRecord{
		Time:            0.1,
		Direction:       actuation.Binormal,
		Magnitudes:      []float64{1, 2},
		ElementPosition: []float64{0.5, 1},
	})
	rec.RecordTorque(actuation.TorqueRecord{
		Time:            0.2,
		Direction:       actuation.Binormal,
		Magnitudes:      []float64{3, 4},
		Torques:         [][3]float64{{0, 3, 0}, {0, 4, 0}},
		ElementPosition: []float64{0.5, 1},
	})

	h := rec.History()
	if len(h.Arm.Time) != 3 || h.Arm.NElemsRod != 10 {
		t.Fatalf("arm data: %d samples, %d elements", len(h.Arm.Time), h.Arm.NElemsRod)
	}
	if len(h.Arm.PositionRod[0]) != 10 || len(h.Arm.NodePositionRod[0]) != 11 {
		t.Errorf("position sizes %d/%d", len(h.Arm.PositionRod[0]), len(h.Arm.NodePositionRod[0]))
	}
	if math.Abs(h.Arm.PositionRod[0][0][1]-0.05) > 1e-12 {
		t.Errorf("first element center = %v", h.Arm.PositionRod[0][0])
	}
	if h.Arm.PositionSphere[2] != [3]float64{0.3, 0.5, 0} {
		t.Errorf("sphere position = %v", h.Arm.PositionSphere[2])
	}

	act, ok := h.Activation["binormal"]
	if !ok {
		t.Fatalf("missing binormal activation: %v", h.Activation)
	}
	if act.Torque[0][1] != [3]float64{0, 2, 0} {
		t.Errorf("torque vector = %v", act.Torque[0][1])
	}
	if len(act.Torque) != 2 || act.Torque[1][0] != [3]float64{0, 3, 0} {
		t.Errorf("recorded torque vectors not carried through: %v", act.Torque)
	}
	if _, ok := h.Activation["normal"]; ok {
		t.Error("normal activation should be absent without samples")
	}

	if h.Obstacles.NObstacles != 1 || len(h.Obstacles.Obstacles[0].PlotPoints) != 10 {
		t.Errorf("obstacle data = %+v", h.Obstacles)
	}
}

func TestRecorderSkipsDivergedArm(t *testing.T) {
	arm, err := rod.New(rod.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecorder(arm, body.NewSphere(r3.Vec{}, 0.05), nil, 4)
	rec.Record(0, 0)
	arm.State()[0] = math.NaN()
	arm.Refresh()
	rec.Record(1, 0.1)
	if rec.Rod().Len() != 1 || rec.Sphere().Len() != 1 || rec.Skipped() != 1 {
		t.Errorf("rod=%d sphere=%d skipped=%d", rec.Rod().Len(), rec.Sphere().Len(), rec.Skipped())
	}
}
