package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/elasticbuf/timing"
	"github.com/sarchlab/elasticbuf/verification"
)

type fakeBuffer struct {
	name      string
	size, cap int
}

func (b *fakeBuffer) Name() string  { return b.name }
func (b *fakeBuffer) Size() int     { return b.size }
func (b *fakeBuffer) Capacity() int { return b.cap }

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *timing.SerialEngine
		bench  *verification.Bench
		router http.Handler
	)

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		return rec
	}

	getJSON := func(url string, v any) {
		rec := get(url)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		bench = verification.MakeBuilder().
			WithEngine(engine).
			WithProducer(verification.NewSequenceProducer(0x55, 0xAA)).
			WithResetCycles(2).
			WithMaxCycles(3).
			Build("Bench")

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterComponent(bench)
		router = m.Router()
	})

	It("should register the bench and the buffer inside it", func() {
		Expect(m.components).To(HaveLen(1))
		Expect(m.sources).To(HaveLen(1))
		Expect(m.buffers).To(HaveLen(1))
		Expect(m.buffers[0].buffer.Name()).To(Equal("Bench.Buffer"))
		Expect(m.buffers[0].owner).To(BeIdenticalTo(bench))
	})

	It("should list components", func() {
		var names []string
		getJSON("/api/list_components", &names)
		Expect(names).To(Equal([]string{"Bench"}))
	})

	It("should report the current cycle", func() {
		Expect(bench.Run()).To(Succeed())

		var rsp struct {
			Now uint64 `json:"now"`
		}
		getJSON("/api/now", &rsp)
		Expect(rsp.Now).To(Equal(uint64(4)))
	})

	It("should report the last sample", func() {
		var rsp []signalRsp
		getJSON("/api/signals", &rsp)
		Expect(rsp).To(BeEmpty())

		Expect(bench.Run()).To(Succeed())

		getJSON("/api/signals", &rsp)
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Component).To(Equal("Bench"))
		Expect(rsp[0].Cycle).To(Equal(uint64(4)))
		Expect(rsp[0].OutputValid).To(BeTrue())
		Expect(rsp[0].OutputValue).To(Equal(uint64(0x55)))
		Expect(rsp[0].Drained).To(BeTrue())
		Expect(rsp[0].Accepted).To(BeTrue())
	})

	It("should report buffer levels", func() {
		Expect(bench.Run()).To(Succeed())

		var rsp []bufferRsp
		getJSON("/api/buffers", &rsp)
		Expect(rsp).To(Equal([]bufferRsp{
			{Buffer: "Bench.Buffer", Level: 1, Cap: 2},
		}))
	})

	It("should reject a bad sort method", func() {
		Expect(get("/api/buffers?sort=name").Code).
			To(Equal(http.StatusBadRequest))
		Expect(get("/api/buffers?limit=x").Code).
			To(Equal(http.StatusBadRequest))
		Expect(get("/api/buffers?offset=-1").Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should sort and page buffers", func() {
		levels := []bufferRsp{
			{Buffer: "A", Level: 1, Cap: 2},
			{Buffer: "B", Level: 4, Cap: 16},
			{Buffer: "C", Level: 2, Cap: 2},
		}

		names := func(bufs []bufferRsp) []string {
			var n []string
			for _, b := range bufs {
				n = append(n, b.Buffer)
			}
			return n
		}

		Expect(names(sortAndSelectBuffers(levels, "level", 0, 0))).
			To(Equal([]string{"B", "C", "A"}))
		Expect(names(sortAndSelectBuffers(levels, "percent", 0, 0))).
			To(Equal([]string{"C", "A", "B"}))
		Expect(names(sortAndSelectBuffers(levels, "percent", 1, 1))).
			To(Equal([]string{"A"}))
		Expect(sortAndSelectBuffers(levels, "level", 2, 5)).To(BeEmpty())
	})

	It("should read a standalone buffer only while the engine is paused", func() {
		buf := &fakeBuffer{name: "Standalone", size: 1, cap: 2}
		m.RegisterComponent(buf)

		level := func() int {
			for _, b := range m.bufferLevels() {
				if b.Buffer == "Standalone" {
					return b.Level
				}
			}

			Fail("standalone buffer not listed")

			return -1
		}

		Expect(level()).To(Equal(0))

		engine.Pause()
		Expect(level()).To(Equal(1))
		engine.Continue()

		buf.size = 2
		Expect(level()).To(Equal(1))
	})

	It("should serve buffer levels while the bench runs", func() {
		runEngine := timing.NewSerialEngine()
		c := verification.DefaultStressConfig()
		c.Cycles = 20000

		stress, err := verification.BuildStressBench(runEngine, "Stress", c)
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor()
		m.RegisterEngine(runEngine)
		m.RegisterComponent(stress)
		router = m.Router()

		done := make(chan error, 1)
		go func() {
			done <- stress.Run()
		}()

		for i := 0; i < 100; i++ {
			var rsp []bufferRsp
			getJSON("/api/buffers", &rsp)
			Expect(rsp).To(HaveLen(1))
			Expect(rsp[0].Level).To(BeNumerically("<=", rsp[0].Cap))

			var signals []signalRsp
			getJSON("/api/signals", &signals)
		}

		Eventually(done, "10s").Should(Receive(BeNil()))

		var rsp []bufferRsp
		getJSON("/api/buffers", &rsp)
		Expect(rsp[0].Level).To(Equal(stress.Buffer().Size()))
	})

	It("should serialize a component", func() {
		rec := get("/api/component/Bench")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).NotTo(BeEmpty())

		Expect(get("/api/component/Nothing").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should reject a malformed field request", func() {
		Expect(get("/api/field/notjson").Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should pause and continue the engine", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(engine.IsPaused()).To(BeTrue())

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Expect(engine.IsPaused()).To(BeFalse())
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Bench", 2)
		bench.AcceptHook(bar)
		Expect(bench.Run()).To(Succeed())

		var rsp []ProgressSnapshot
		getJSON("/api/progress", &rsp)
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Name).To(Equal("Bench"))
		Expect(rsp[0].Total).To(Equal(uint64(2)))
		Expect(rsp[0].Finished).To(Equal(uint64(1)))
		Expect(rsp[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		getJSON("/api/progress", &rsp)
		Expect(rsp).To(BeEmpty())
	})

	It("should serve metrics", func() {
		rec := get("/metrics")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("go_goroutines"))
	})

	It("should serve the page", func() {
		rec := get("/")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("elasticbuf monitor"))
	})
})

var _ = Describe("ProgressBar", func() {
	It("should drop in-progress elements on reset", func() {
		bar := &ProgressBar{}
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)
		bar.DiscardInProgress()

		s := bar.Snapshot()
		Expect(s.Finished).To(Equal(uint64(1)))
		Expect(s.InProgress).To(BeZero())
		Expect(s.Discarded).To(Equal(uint64(1)))
	})
})
