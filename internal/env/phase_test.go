package env_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/env"
)

var _ = Describe("Environment", func() {
	var (
		cfg *config.Config
		e   *env.Environment
	)

	BeforeEach(func() {
		cfg = config.GetPreset("reach2d")
		cfg.FinalTime = 0.05
		cfg.StepsPerUpdate = 50

		var err error
		e, err = env.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects an invalid configuration", func() {
		cfg.Actuation.Dim = "4d"
		_, err := env.New(cfg)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
	})

	Context("before Reset", func() {
		It("is uninitialized", func() {
			Expect(e.Phase()).To(Equal(env.PhaseUninitialized))
		})

		It("refuses to step", func() {
			_, _, _, _, err := e.Step([]float64{0, 0, 0})
			Expect(err).To(MatchError(dynamo.ErrEpisodeState))
		})
	})

	Context("after Reset", func() {
		var obs dynamo.State

		BeforeEach(func() {
			var err error
			obs, err = e.Reset()
			Expect(err).NotTo(HaveOccurred())
		})

		It("is ready with a finite observation of the layout size", func() {
			Expect(e.Phase()).To(Equal(env.PhaseReady))
			Expect(obs).To(HaveLen(e.ObservationSize()))
			Expect(obs.IsValid()).To(BeTrue())
		})

		It("runs until the horizon and then stops", func() {
			Expect(e.Horizon()).To(Equal(5))

			for i := 1; i < e.Horizon(); i++ {
				_, _, done, info, err := e.Step([]float64{0, 0, 0})
				Expect(err).NotTo(HaveOccurred())
				Expect(done).To(BeFalse())
				Expect(info.Step).To(Equal(i))
				Expect(e.Phase()).To(Equal(env.PhaseRunning))
			}

			_, r, done, info, err := e.Step([]float64{0, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(r).To(BeNumerically("~", -0.64, 1e-9))
			Expect(info.SimulationTime).To(BeNumerically("~", 0.05, 1e-9))
			Expect(e.Phase()).To(Equal(env.PhaseDone))

			_, _, _, _, err = e.Step([]float64{0, 0, 0})
			Expect(err).To(MatchError(dynamo.ErrEpisodeState))
		})

		It("can be reset after finishing", func() {
			for i := 0; i < e.Horizon(); i++ {
				_, _, _, _, err := e.Step([]float64{0.2, 0.2, 0.2})
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(e.Phase()).To(Equal(env.PhaseDone))

			_, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Phase()).To(Equal(env.PhaseReady))
			Expect(e.StepCount()).To(BeZero())
		})

		It("reports divergence as a terminal step, not an error", func() {
			e.Rod().State()[1] = math.Inf(1)
			e.Rod().Refresh()

			obs, r, done, info, err := e.Step([]float64{0, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Divergent).To(BeTrue())
			Expect(done).To(BeTrue())
			Expect(r).To(Equal(cfg.Reward.Sentinel))
			Expect(obs.IsValid()).To(BeTrue())
		})
	})
})
