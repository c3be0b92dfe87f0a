package timing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type namedHandler struct {
	*MockHandler
}

func (namedHandler) Name() string {
	return "Top.Agent"
}

var _ = Describe("EventLogger", func() {
	var (
		mockCtrl *gomock.Controller
		handler  *MockHandler
		engine   *SerialEngine
		buf      bytes.Buffer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		handler = NewMockHandler(mockCtrl)
		engine = NewSerialEngine()

		buf.Reset()
		engine.AcceptHook(NewEventLogger(log.New(&buf, "", 0)))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should log each event before it is handled", func() {
		handler.EXPECT().Handle(gomock.Any()).
			Do(func(Event) {
				Expect(buf.String()).To(Equal(
					"3, timing.labeledEvent -> *timing.MockHandler\n"))
			}).
			Return(nil)

		engine.Schedule(newLabeledEvent("a", 3, handler, false))
		Expect(engine.Run()).To(Succeed())
	})

	It("should use the name of a named handler", func() {
		handler.EXPECT().Handle(gomock.Any()).Return(nil).Times(2)

		h := namedHandler{handler}
		engine.Schedule(newLabeledEvent("a", 1, h, false))
		engine.Schedule(newLabeledEvent("b", 2, h, true))
		Expect(engine.Run()).To(Succeed())

		Expect(buf.String()).To(Equal(
			"1, timing.labeledEvent -> Top.Agent\n" +
				"2, timing.labeledEvent -> Top.Agent\n"))
	})
})
