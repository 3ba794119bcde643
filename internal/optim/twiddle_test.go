package optim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/twiddle/internal/dynamo"
	"github.com/san-kum/twiddle/internal/optim"
	"github.com/san-kum/twiddle/internal/sim"
)

func bowl(g dynamo.Gains) float64 {
	return (g[0]-1)*(g[0]-1) + (g[1]+2)*(g[1]+2) + (g[2]-0.5)*(g[2]-0.5)
}

func expectMonotone(history []optim.Record) {
	for i := 1; i < len(history); i++ {
		Expect(history[i].BestCost).To(BeNumerically("<=", history[i-1].BestCost),
			"best cost regressed at iteration %d", history[i].Iteration)
	}
}

var _ = Describe("Twiddle", func() {
	var opts optim.Options

	BeforeEach(func() {
		opts = optim.DefaultOptions()
	})

	Context("on a separable quadratic", func() {
		It("finds the minimum", func() {
			tw, err := optim.NewTwiddle(bowl, opts)
			Expect(err).NotTo(HaveOccurred())

			res, err := tw.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeTrue())
			Expect(res.Gains[0]).To(BeNumerically("~", 1.0, 1e-2))
			Expect(res.Gains[1]).To(BeNumerically("~", -2.0, 1e-2))
			Expect(res.Gains[2]).To(BeNumerically("~", 0.5, 1e-2))
			Expect(res.BestCost).To(BeNumerically("<", 1e-4))
			Expect(res.InitialCost).To(Equal(bowl(dynamo.Gains{})))
		})

		It("never lets the best cost regress", func() {
			tw, err := optim.NewTwiddle(bowl, opts)
			Expect(err).NotTo(HaveOccurred())
			res, err := tw.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.History).To(HaveLen(res.Iterations))
			expectMonotone(res.History)
		})

		It("reports every pass through OnIteration", func() {
			var seen []int
			opts.OnIteration = func(r optim.Record) { seen = append(seen, r.Iteration) }
			tw, err := optim.NewTwiddle(bowl, opts)
			Expect(err).NotTo(HaveOccurred())
			res, err := tw.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(HaveLen(res.Iterations))
			for i, it := range seen {
				Expect(it).To(Equal(i + 1))
			}
		})

		It("starts from the configured gains", func() {
			opts.InitialGains = dynamo.Gains{1, -2, 0.5}
			tw, err := optim.NewTwiddle(bowl, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(tw.BestCost()).To(Equal(0.0))
			Expect(tw.Gains()).To(Equal(dynamo.Gains{1, -2, 0.5}))
		})
	})

	Context("when nothing ever improves", func() {
		It("shrinks the steps until it terminates", func() {
			tw, err := optim.NewTwiddle(func(dynamo.Gains) float64 { return 5 }, opts)
			Expect(err).NotTo(HaveOccurred())
			res, err := tw.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Iterations).To(Equal(76))
			Expect(res.Gains).To(Equal(dynamo.Gains{}))
			Expect(res.BestCost).To(Equal(5.0))
			Expect(res.History[len(res.History)-1].StepSum()).To(BeNumerically("<=", opts.Tolerance))
		})

		It("rejects non-finite trials", func() {
			cost := func(g dynamo.Gains) float64 {
				if g == (dynamo.Gains{}) {
					return 1
				}
				if g[0] > 0 {
					return math.Inf(-1)
				}
				return math.NaN()
			}
			tw, err := optim.NewTwiddle(cost, opts)
			Expect(err).NotTo(HaveOccurred())
			res, err := tw.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.BestCost).To(Equal(1.0))
			Expect(res.Gains).To(Equal(dynamo.Gains{}))
		})
	})

	Context("stepping by hand", func() {
		It("stops reporting progress after convergence", func() {
			opts.Tolerance = 2.9
			tw, err := optim.NewTwiddle(func(dynamo.Gains) float64 { return 1 }, opts)
			Expect(err).NotTo(HaveOccurred())

			rec, more := tw.Step()
			Expect(rec.Iteration).To(Equal(1))
			Expect(more).To(BeFalse())
			Expect(tw.Converged()).To(BeTrue())

			again, more := tw.Step()
			Expect(more).To(BeFalse())
			Expect(again).To(Equal(rec))
			Expect(tw.Iteration()).To(Equal(1))
		})

		It("formats progress records", func() {
			rec := optim.Record{Iteration: 3, Gains: dynamo.Gains{1, 2.1, 0}, BestCost: 0.5}
			Expect(rec.String()).To(Equal("Twiddle # 3 [1 2.1 0] -> 0.5"))
		})
	})

	Context("limits", func() {
		It("honours MaxIterations", func() {
			opts.MaxIterations = 5
			tw, err := optim.NewTwiddle(bowl, opts)
			Expect(err).NotTo(HaveOccurred())
			res, err := tw.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Iterations).To(Equal(5))
			Expect(res.Converged).To(BeFalse())
		})

		It("returns the best so far when cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			tw, err := optim.NewTwiddle(bowl, opts)
			Expect(err).NotTo(HaveOccurred())
			res, err := tw.Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Iterations).To(Equal(0))
			Expect(res.BestCost).To(Equal(bowl(dynamo.Gains{})))
		})

		DescribeTable("rejects invalid options",
			func(mutate func(*optim.Options)) {
				mutate(&opts)
				_, err := optim.NewTwiddle(bowl, opts)
				Expect(err).To(HaveOccurred())
			},
			Entry("zero tolerance", func(o *optim.Options) { o.Tolerance = 0 }),
			Entry("negative step", func(o *optim.Options) { o.InitialStep = -1 }),
			Entry("grow not above one", func(o *optim.Options) { o.Grow = 1 }),
			Entry("shrink not below one", func(o *optim.Options) { o.Shrink = 1 }),
			Entry("negative max iterations", func(o *optim.Options) { o.MaxIterations = -1 }),
			Entry("nan initial gains", func(o *optim.Options) { o.InitialGains = dynamo.Gains{math.NaN(), 0, 0} }),
		)

		It("requires a cost function", func() {
			_, err := optim.NewTwiddle(nil, opts)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("on the reference vehicle scenario", func() {
		var (
			eval *sim.Evaluator
			res  optim.Result
		)

		BeforeEach(func() {
			var err error
			eval, err = sim.New(sim.DefaultScenario(), nil)
			Expect(err).NotTo(HaveOccurred())

			tw, err := optim.NewTwiddle(eval.Evaluate, opts)
			Expect(err).NotTo(HaveOccurred())
			res, err = tw.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
		})

		It("accepts the first two probes of the first pass", func() {
			first := res.History[0]
			Expect(first.Gains).To(Equal(dynamo.Gains{1, 1, 0}))
			Expect(first.BestCost).To(BeNumerically("~", 0.0434970807256939, 1e-9))
		})

		It("ends strictly below the untuned cost", func() {
			baseline := eval.Evaluate(dynamo.Gains{})
			Expect(res.InitialCost).To(Equal(baseline))
			Expect(res.BestCost).To(BeNumerically("<", baseline))
			Expect(res.BestCost).To(BeNumerically("<", 1e-3))
			Expect(res.Converged).To(BeTrue())
		})

		It("keeps the best cost monotone", func() {
			expectMonotone(res.History)
		})
	})
})
