package verification

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sarchlab/elasticbuf/timing"
)

var _ = ginkgo.Describe("Stress", func() {
	ginkgo.DescribeTable("should keep order under random traffic",
		func(seed int64, in, out float64, wait bool) {
			engine := timing.NewSerialEngine()
			c := DefaultStressConfig()
			c.Seed = seed
			c.Cycles = 3000
			c.InputRate = in
			c.OutputRate = out
			c.WaitForReady = wait
			c.Width = 12

			bench, err := BuildStressBench(engine, "Stress", c)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(bench.Run()).To(gomega.Succeed())

			report := bench.Scoreboard().Report()
			gomega.Expect(report.Cycles).To(gomega.Equal(c.ResetCycles + c.Cycles))
			gomega.Expect(report.Accepted - report.Drained).
				To(gomega.Equal(uint64(len(bench.Scoreboard().Pending()))))
			gomega.Expect(report.MaxOccupancy).To(gomega.BeNumerically("<=", 2))
		},
		ginkgo.Entry("balanced", int64(1), 0.5, 0.5, false),
		ginkgo.Entry("slow consumer", int64(2), 0.9, 0.2, false),
		ginkgo.Entry("slow producer", int64(3), 0.2, 0.9, true),
		ginkgo.Entry("saturated", int64(4), 1.0, 1.0, false),
	)

	ginkgo.It("should reach one element per cycle when both sides are always ready", func() {
		engine := timing.NewSerialEngine()
		c := DefaultStressConfig()
		c.InputRate = 1
		c.OutputRate = 1
		c.Cycles = 1000

		bench, err := BuildStressBench(engine, "Stress", c)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(bench.Run()).To(gomega.Succeed())

		report := bench.Scoreboard().Report()
		gomega.Expect(report.Drained).To(gomega.BeNumerically(">=", c.Cycles-2))
		gomega.Expect(report.BackpressureCycles).To(gomega.BeZero())
	})

	ginkgo.It("should stop once all elements went through", func() {
		engine := timing.NewSerialEngine()
		c := DefaultStressConfig()
		c.Cycles = 0
		c.Elements = 200

		bench, err := BuildStressBench(engine, "Stress", c)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(bench.Run()).To(gomega.Succeed())

		report := bench.Scoreboard().Report()
		gomega.Expect(report.Accepted).To(gomega.Equal(uint64(200)))
		gomega.Expect(report.Drained).To(gomega.Equal(uint64(200)))
		gomega.Expect(bench.Buffer().Size()).To(gomega.BeZero())
	})

	ginkgo.DescribeTable("should reject configs that never end or make no sense",
		func(mutate func(*StressConfig)) {
			c := DefaultStressConfig()
			mutate(&c)
			gomega.Expect(c.Validate()).NotTo(gomega.Succeed())
		},
		ginkgo.Entry("no limit", func(c *StressConfig) { c.Cycles = 0 }),
		ginkgo.Entry("input rate", func(c *StressConfig) { c.InputRate = 1.5 }),
		ginkgo.Entry("output rate", func(c *StressConfig) { c.OutputRate = -0.1 }),
		ginkgo.Entry("zero rate without cycles", func(c *StressConfig) {
			c.Cycles = 0
			c.Elements = 10
			c.OutputRate = 0
		}),
		ginkgo.Entry("width", func(c *StressConfig) { c.Width = 0 }),
		ginkgo.Entry("frequency", func(c *StressConfig) { c.Freq = 0 }),
	)
})
