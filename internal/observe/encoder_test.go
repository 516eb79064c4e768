package observe

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/body"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/geom"
	"github.com/GazzolaLab/Elastica-RL-control/internal/rod"
)

func newRod(t *testing.T, n int) *rod.Rod {
	t.Helper()
	p := rod.DefaultParams()
	p.Elements = n
	r, err := rod.New(p)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func obstacles(t *testing.T, n int) []*body.Cylinder {
	t.Helper()
	out := make([]*body.Cylinder, n)
	for i := range out {
		c, err := body.NewCylinder(r3.Vec{X: float64(i) * 0.1}, r3.Vec{Z: 1}, r3.Vec{X: 1}, 0.4, 0.02)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = c
	}
	return out
}

func TestObservationLength(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		want   int
	}{
		// 11 sampled nodes: 33 + 15
		{"20 elements planar", Layout{Elements: 20}, 48},
		// 11 nodes and a target quaternion
		{"40 elements tracked orientation", Layout{Elements: 40, TargetOrientation: true}, 52},
		// stride 5 lands on 0..50
		{"50 elements with obstacles", Layout{Elements: 50, Obstacles: 8}, 48 + 8*15},
		// stride 1: 8 nodes
		{"7 elements", Layout{Elements: 7}, 24 + 15},
		// stride 2: 0,2,...,24 plus tip 25
		{"25 elements", Layout{Elements: 25, TargetOrientation: true}, 14*3 + 19},
		{"coarse sampling", Layout{Elements: 20, RodPoints: 4, Obstacles: 2, PointsPerObstacle: 3}, 5*3 + 15 + 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layout.Size(); got != tt.want {
				t.Fatalf("Size() = %d, want %d", got, tt.want)
			}
			enc, err := NewEncoder(tt.layout, tt.want)
			if err != nil {
				t.Fatal(err)
			}

			sphere := body.NewSphere(r3.Vec{X: -0.4, Y: 0.6}, 0.05)
			obs, err := enc.Encode(newRod(t, tt.layout.Elements), sphere, obstacles(t, tt.layout.Obstacles))
			if err != nil {
				t.Fatal(err)
			}
			if len(obs) != tt.want {
				t.Errorf("len(obs) = %d, want %d", len(obs), tt.want)
			}
		})
	}
}

func TestRodIndicesIncludeEndpoints(t *testing.T) {
	for _, n := range []int{1, 7, 10, 20, 25, 33, 40} {
		idx := Layout{Elements: n}.RodIndices()
		if idx[0] != 0 || idx[len(idx)-1] != n {
			t.Errorf("n=%d: indices %v miss an endpoint", n, idx)
		}
	}
}

func TestEncodeOrder(t *testing.T) {
	r := newRod(t, 20)
	sphere := body.NewSphere(r3.Vec{X: -0.4, Y: 0.6, Z: 0.2}, 0.05)
	sphere.Velocity = r3.Vec{X: 3, Y: 4}

	enc, _ := NewEncoder(Layout{Elements: 20, TargetOrientation: true}, 0)
	obs, err := enc.Encode(r, sphere, nil)
	if err != nil {
		t.Fatal(err)
	}

	// y block of a straight arm along +y: nodes 0, 2, ..., 20 at 0.1 spacing
	for i := 0; i < 11; i++ {
		if math.Abs(obs[11+i]-0.1*float64(i)) > 1e-12 {
			t.Errorf("y[%d] = %v", i, obs[11+i])
		}
	}

	off := 33
	for i := 0; i < 4; i++ {
		if obs[off+i] != 0 {
			t.Errorf("tip at rest should have zero speed and heading, got %v", obs[off:off+4])
		}
	}

	q := geom.QuatSlice(geom.FrameToQuat(geom.BaseFrame()))
	for i := 0; i < 4; i++ {
		if math.Abs(obs[off+4+i]-q[i]) > 1e-12 {
			t.Errorf("tip quaternion[%d] = %v, want %v", i, obs[off+4+i], q[i])
		}
	}

	off += 8
	want := []float64{-0.4, 0.6, 0.2, 5, 0.6, 0.8, 0}
	for i, w := range want {
		if math.Abs(obs[off+i]-w) > 1e-12 {
			t.Errorf("target[%d] = %v, want %v", i, obs[off+i], w)
		}
	}
}

func TestNewEncoderSizeMismatch(t *testing.T) {
	if _, err := NewEncoder(Layout{Elements: 20}, 47); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestEncodeShapeMismatch(t *testing.T) {
	enc, _ := NewEncoder(Layout{Elements: 10, Obstacles: 1}, 0)
	sphere := body.NewSphere(r3.Vec{}, 0.05)
	if _, err := enc.Encode(newRod(t, 12), sphere, obstacles(t, 1)); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for rod size, got %v", err)
	}
	if _, err := enc.Encode(newRod(t, 10), sphere, nil); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for obstacle count, got %v", err)
	}
}
