// Package monitoring serves a running bench over HTTP so that it can be
// watched, paused, and profiled while it runs.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"
	"unsafe"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/elasticbuf/monitoring/web"
	"github.com/sarchlab/elasticbuf/naming"
	"github.com/sarchlab/elasticbuf/timing"
	"github.com/sarchlab/elasticbuf/verification"
)

// A Buffer holds elements up to a capacity.
type Buffer interface {
	naming.Named
	Size() int
	Capacity() int
}

// A SampleSource exposes the last cycle it ran.
type SampleSource interface {
	naming.Named
	LastSample() (verification.Sample, bool)
}

// Monitor turns a simulation into a server that allows external monitoring
// and control.
type Monitor struct {
	engine timing.Engine

	componentsLock sync.RWMutex
	components     []naming.Named
	buffers        []*bufferEntry
	sources        []SampleSource

	registry   *prometheus.Registry
	portNumber int
	openURL    bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor with its own metrics registry.
func NewMonitor() *Monitor {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Monitor{registry: reg}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor page in a browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openURL = true
	return m
}

// Registry returns the registry served on /metrics.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e timing.Engine) {
	m.engine = e
}

// RegisterComponent registers a component to be monitored. Buffers held in
// the component's fields are registered as well.
func (m *Monitor) RegisterComponent(c naming.Named) {
	m.componentsLock.Lock()
	defer m.componentsLock.Unlock()

	m.components = append(m.components, c)

	source, isSource := c.(SampleSource)
	if isSource {
		m.sources = append(m.sources, source)
	}

	if b, ok := c.(Buffer); ok {
		m.buffers = append(m.buffers, &bufferEntry{buffer: b})
	}

	m.registerFieldBuffers(c, source)
}

var bufferType = reflect.TypeOf((*Buffer)(nil)).Elem()

// registerFieldBuffers registers the buffers held by c. When c is a
// SampleSource, their levels are read from its samples.
func (m *Monitor) registerFieldBuffers(c any, owner SampleSource) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}

	v = v.Elem()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)

		if field.Kind() != reflect.Ptr || field.IsNil() ||
			!field.Type().Implements(bufferType) {
			continue
		}

		if v.Type().Field(i).Anonymous {
			continue
		}

		fieldRef := reflect.NewAt(
			field.Type(),
			unsafe.Pointer(field.UnsafeAddr()),
		).Elem().Interface().(Buffer)
		m.buffers = append(m.buffers, &bufferEntry{
			buffer: fieldRef,
			owner:  owner,
		})
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        timing.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler serving the monitor API and pages.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/buffers", m.listBuffers)
	r.HandleFunc("/api/signals", m.listSignals)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.PathPrefix("/").Handler(web.Handler())

	return r
}

// StartServer starts serving in the background and returns the URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	handler := m.Router()

	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	if m.openURL {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return url
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%d}", m.engine.CurrentTime())
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.componentsLock.RLock()
	defer m.componentsLock.RUnlock()

	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string   `json:"comp_name,omitempty"`
	FieldName []string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(req.FieldName)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

// A bufferEntry is a registered buffer. The buffer itself belongs to the
// engine goroutine, so it is only read while the engine is paused. A buffer
// owned by a SampleSource reports the state of the owner's last sample.
type bufferEntry struct {
	buffer Buffer
	owner  SampleSource

	mu        sync.Mutex
	lastLevel int
}

func (e *bufferEntry) level(enginePaused bool) int {
	if e.owner != nil {
		s, ok := e.owner.LastSample()
		if !ok {
			return 0
		}

		return s.State.Size()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if enginePaused {
		e.lastLevel = e.buffer.Size()
	}

	return e.lastLevel
}

type bufferRsp struct {
	Buffer string `json:"buffer"`
	Level  int    `json:"level"`
	Cap    int    `json:"cap"`
}

func (m *Monitor) listBuffers(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := buffersParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	rsp := sortAndSelectBuffers(m.bufferLevels(), sortMethod, limit, offset)

	writeJSON(w, rsp)
}

// bufferLevels reads the level of every registered buffer.
func (m *Monitor) bufferLevels() []bufferRsp {
	m.componentsLock.RLock()
	defer m.componentsLock.RUnlock()

	paused := m.enginePaused()

	levels := make([]bufferRsp, 0, len(m.buffers))
	for _, e := range m.buffers {
		levels = append(levels, bufferRsp{
			Buffer: e.buffer.Name(),
			Level:  e.level(paused),
			Cap:    e.buffer.Capacity(),
		})
	}

	return levels
}

// enginePaused tells if the buffers can be read without racing the engine.
func (m *Monitor) enginePaused() bool {
	if m.engine == nil {
		return true
	}

	p, ok := m.engine.(interface{ IsPaused() bool })

	return ok && p.IsPaused()
}

func buffersParseParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	sortMethod = r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		return "", 0, 0, fmt.Errorf(
			"invalid sort method: %s. Allowed values are `level` and `percent`",
			sortMethod)
	}

	limit, err = intParam(r, "limit")
	if err != nil {
		return "", 0, 0, err
	}

	offset, err = intParam(r, "offset")
	if err != nil {
		return "", 0, 0, err
	}

	if limit < 0 || offset < 0 {
		return "", 0, 0, errors.New("limit and offset must not be negative")
	}

	return sortMethod, limit, offset, nil
}

func intParam(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

func bufferPercent(b bufferRsp) float64 {
	return float64(b.Level) / float64(b.Cap)
}

// sortAndSelectBuffers returns at most limit buffers after skipping offset.
// A zero limit returns every remaining buffer.
func sortAndSelectBuffers(
	levels []bufferRsp,
	sortMethod string,
	limit, offset int,
) []bufferRsp {
	sorted := make([]bufferRsp, len(levels))
	copy(sorted, levels)

	byLevel := func(i, j int) int {
		return sorted[i].Level - sorted[j].Level
	}

	byPercent := func(i, j int) int {
		pi, pj := bufferPercent(sorted[i]), bufferPercent(sorted[j])

		switch {
		case pi > pj:
			return 1
		case pi < pj:
			return -1
		default:
			return 0
		}
	}

	first, second := byPercent, byLevel
	if sortMethod == "level" {
		first, second = byLevel, byPercent
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if c := first(i, j); c != 0 {
			return c > 0
		}

		return second(i, j) > 0
	})

	if offset > len(sorted) {
		offset = len(sorted)
	}

	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sorted[offset:end]
}

type signalRsp struct {
	Component   string `json:"component"`
	Cycle       uint64 `json:"cycle"`
	Time        uint64 `json:"time"`
	Reset       bool   `json:"reset"`
	InputValid  bool   `json:"input_valid"`
	InputValue  uint64 `json:"input_value"`
	OutputReady bool   `json:"output_consumer_ready"`
	OutputValid bool   `json:"output_valid"`
	OutputValue uint64 `json:"output_value"`
	InputReady  bool   `json:"input_ready"`
	Accepted    bool   `json:"accepted"`
	Drained     bool   `json:"drained"`
	State       string `json:"state"`
}

func (m *Monitor) listSignals(w http.ResponseWriter, _ *http.Request) {
	m.componentsLock.RLock()
	defer m.componentsLock.RUnlock()

	rsp := make([]signalRsp, 0, len(m.sources))

	for _, src := range m.sources {
		s, ok := src.LastSample()
		if !ok {
			continue
		}

		rsp = append(rsp, signalRsp{
			Component:   src.Name(),
			Cycle:       s.Cycle,
			Time:        uint64(s.Time),
			Reset:       s.Inputs.Reset,
			InputValid:  s.Inputs.InputValid,
			InputValue:  uint64(s.Inputs.InputValue),
			OutputReady: s.Inputs.OutputReady,
			OutputValid: s.Outputs.OutputValid,
			OutputValue: uint64(s.Outputs.OutputValue),
			InputReady:  s.Outputs.InputReady,
			Accepted:    s.Transfer.Accepted,
			Drained:     s.Transfer.Drained,
			State:       s.State.String(),
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) naming.Named {
	m.componentsLock.RLock()
	defer m.componentsLock.RUnlock()

	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	bytes, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
