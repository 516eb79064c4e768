package diagnostics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/actuation"
)

// History is the offline data contract of one episode. Field names match
// the files consumed by the rendering tools.
type History struct {
	Arm        ArmData                `json:"arm_data"`
	Activation map[string]*Activation `json:"arm_activation"`
	Obstacles  ObstacleData           `json:"obstacle_data"`
}

type ArmData struct {
	Time              []float64      `json:"time"`
	PositionRod       [][][3]float64 `json:"position_rod"`
	NodePositionRod   [][][3]float64 `json:"node_position_rod"`
	RadiiRod          [][]float64    `json:"radii_rod"`
	NElemsRod         int            `json:"n_elems_rod"`
	OrientationRod    [][4]float64   `json:"orientation_rod"`
	PositionSphere    [][3]float64   `json:"position_sphere"`
	VelocitySphere    [][3]float64   `json:"velocity_sphere"`
	RadiiSphere       []float64      `json:"radii_sphere"`
	OrientationSphere [][4]float64   `json:"orientation_sphere"`
}

type Activation struct {
	Time            []float64      `json:"time"`
	TorqueMag       [][]float64    `json:"torque_mag"`
	Torque          [][][3]float64 `json:"torque_muscle"`
	ElementPosition [][]float64    `json:"element_position"`
}

type ObstacleData struct {
	NObstacles int              `json:"n_obstacles"`
	Obstacles  []ObstacleRecord `json:"obstacles"`
}

type ObstacleRecord struct {
	Start      [3]float64   `json:"start"`
	Direction  [3]float64   `json:"direction"`
	Normal     [3]float64   `json:"normal"`
	Length     float64      `json:"length"`
	Radius     float64      `json:"radius"`
	PlotPoints [][3]float64 `json:"plot_points"`
}

func vec(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func vecs(vs []r3.Vec) [][3]float64 {
	out := make([][3]float64, len(vs))
	for i, v := range vs {
		out[i] = vec(v)
	}
	return out
}

// History assembles the collected samples into the export layout.
func (r *Recorder) History() *History {
	h := &History{Activation: make(map[string]*Activation)}

	rods := r.rodSeries.Items()
	h.Arm.NElemsRod = r.rod.Elements()
	for _, rec := range rods {
		h.Arm.Time = append(h.Arm.Time, rec.Time)
		h.Arm.PositionRod = append(h.Arm.PositionRod, vecs(rec.Centers))
		h.Arm.NodePositionRod = append(h.Arm.NodePositionRod, vecs(rec.Nodes))
		h.Arm.RadiiRod = append(h.Arm.RadiiRod, rec.Radius)
		h.Arm.OrientationRod = append(h.Arm.OrientationRod, rec.TipQuat)
	}
	for _, rec := range r.sphereSeries.Items() {
		h.Arm.PositionSphere = append(h.Arm.PositionSphere, vec(rec.Position))
		h.Arm.VelocitySphere = append(h.Arm.VelocitySphere, vec(rec.Velocity))
		h.Arm.RadiiSphere = append(h.Arm.RadiiSphere, rec.Radius)
		h.Arm.OrientationSphere = append(h.Arm.OrientationSphere, rec.Quat)
	}

	for _, d := range []actuation.Direction{actuation.Normal, actuation.Binormal, actuation.Tangent} {
		series := r.torques[d.Axis()]
		if series.Len() == 0 {
			continue
		}
		act := &Activation{}
		for _, rec := range series.Items() {
			torque := rec.Torques
			if torque == nil {
				torque = make([][3]float64, len(rec.Magnitudes))
				for i, m := range rec.Magnitudes {
					torque[i][d.Axis()] = m
				}
			}
			act.Time = append(act.Time, rec.Time)
			act.TorqueMag = append(act.TorqueMag, rec.Magnitudes)
			act.Torque = append(act.Torque, torque)
			act.ElementPosition = append(act.ElementPosition, rec.ElementPosition)
		}
		h.Activation[d.String()] = act
	}

	h.Obstacles.NObstacles = len(r.obstacles)
	for _, c := range r.obstacles {
		h.Obstacles.Obstacles = append(h.Obstacles.Obstacles, ObstacleRecord{
			Start:      vec(c.Start),
			Direction:  vec(c.Direction),
			Normal:     vec(c.Normal),
			Length:     c.Length,
			Radius:     c.Radius,
			PlotPoints: vecs(c.SamplePoints(10)),
		})
	}
	return h
}
