package simulation

import (
	"fmt"
	"log/slog"
	"reflect"

	"maneuver-sim/internal/common"

	"gonum.org/v1/gonum/stat"
)

// Handle is the stable identifier of a registered agent: its registration index.
type Handle int

// Contact is the outcome of one agent checking another during a tick.
type Contact struct {
	Observer string
	Target   string
	Distance float64
	Detected bool
}

// TickReport holds every detection outcome of a single tick.
type TickReport struct {
	Tick     int
	Time     float64 // simulation time after the tick
	Contacts []Contact
}

// Summary aggregates a tick report.
type Summary struct {
	Pairs          int
	Detections     int
	MeanDistance   float64
	StdDevDistance float64
}

// Detections returns the number of positive contacts.
func (r TickReport) Detections() int {
	n := 0
	for _, c := range r.Contacts {
		if c.Detected {
			n++
		}
	}
	return n
}

// Summary computes pair distance statistics for the tick.
func (r TickReport) Summary() Summary {
	s := Summary{Pairs: len(r.Contacts), Detections: r.Detections()}
	if len(r.Contacts) == 0 {
		return s
	}
	distances := make([]float64, len(r.Contacts))
	for i, c := range r.Contacts {
		distances[i] = c.Distance
	}
	if len(distances) == 1 {
		s.MeanDistance = distances[0]
		return s
	}
	s.MeanDistance, s.StdDevDistance = stat.MeanStdDev(distances, nil)
	return s
}

// ContactHandler receives each contact as it is evaluated.
type ContactHandler func(tick int, c Contact)

type entry struct {
	agent    Agent
	detector Detector
}

// Manager owns the registered agents and drives the tick loop.
// It is not safe for concurrent use.
type Manager struct {
	entries []entry
	handles map[Agent]Handle // keyed by identity, see identity

	ticks          int
	simulationTime float64
	lastReport     TickReport

	logger    *slog.Logger
	onContact ContactHandler
	metrics   *instruments
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for registration and detection messages.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithContactHandler registers a callback invoked for every evaluated pair.
func WithContactHandler(h ContactHandler) Option {
	return func(m *Manager) {
		m.onContact = h
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		handles: make(map[Agent]Handle),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	inst, err := newInstruments()
	if err != nil {
		m.logger.Warn("metrics disabled", "error", err)
		inst = noopInstruments()
	}
	m.metrics = inst
	return m
}

// RegisterPublisher appends agent to the registry. Detection for the agent is
// evaluated through decorators, applied innermost first.
// Registering the same agent twice, directly or through a variant wrapping it,
// fails with ErrAlreadyRegistered. Registering after the first tick fails with
// ErrRegistrationClosed.
func (m *Manager) RegisterPublisher(agent Agent, decorators ...Decorator) (Handle, error) {
	key := identity(agent)
	if key == nil {
		return -1, ErrNilAgent
	}
	if m.ticks > 0 {
		return -1, fmt.Errorf("register %s: %w", agent.ID(), ErrRegistrationClosed)
	}
	keyed := reflect.TypeOf(key).Comparable()
	if keyed {
		if h, exists := m.handles[key]; exists {
			return h, fmt.Errorf("register %s: %w", agent.ID(), ErrAlreadyRegistered)
		}
	}

	h := Handle(len(m.entries))
	m.entries = append(m.entries, entry{
		agent:    agent,
		detector: Decorate(agent, decorators...),
	})
	if keyed {
		m.handles[key] = h
	}
	m.metrics.recordRegistration()
	m.logger.Info("agent registered", "id", agent.ID(), "handle", int(h), "decorators", len(decorators))
	return h, nil
}

// identity unwraps variants down to the underlying agent. It returns nil for a
// nil agent, including a typed nil pointer.
func identity(agent Agent) Agent {
	for agent != nil {
		if v := reflect.ValueOf(agent); v.Kind() == reflect.Pointer && v.IsNil() {
			return nil
		}
		w, ok := agent.(interface{ Unwrap() Agent })
		if !ok {
			return agent
		}
		agent = w.Unwrap()
	}
	return nil
}

// Agent returns the agent registered under h.
func (m *Manager) Agent(h Handle) (Agent, bool) {
	if h < 0 || int(h) >= len(m.entries) {
		return nil, false
	}
	return m.entries[h].agent, true
}

// Agents returns the registered agents in registration order.
func (m *Manager) Agents() []Agent {
	agents := make([]Agent, len(m.entries))
	for i, e := range m.entries {
		agents[i] = e.agent
	}
	return agents
}

// Len returns the number of registered agents.
func (m *Manager) Len() int {
	return len(m.entries)
}

// Ticks returns the number of ticks executed so far.
func (m *Manager) Ticks() int {
	return m.ticks
}

// Time returns the total elapsed simulation time.
func (m *Manager) Time() float64 {
	return m.simulationTime
}

// LastReport returns the report of the most recent tick.
func (m *Manager) LastReport() TickReport {
	return m.lastReport
}

// Svc executes one tick: every agent advances, then every ordered pair (i, j),
// i != j, is evaluated for detection. Detection always sees the fully advanced state.
// On an empty registry Svc does nothing: the clock stays put and registration stays open.
func (m *Manager) Svc(deltaTime float64) TickReport {
	if len(m.entries) == 0 {
		return TickReport{Tick: m.ticks, Time: m.simulationTime}
	}
	m.ticks++
	m.simulationTime += deltaTime

	// 1. Advance all agents
	for _, e := range m.entries {
		e.agent.Advance(deltaTime)
	}

	// 2. Detection phase
	report := TickReport{
		Tick:     m.ticks,
		Time:     m.simulationTime,
		Contacts: make([]Contact, 0, len(m.entries)*max(len(m.entries)-1, 0)),
	}
	for i, observer := range m.entries {
		for j, target := range m.entries {
			if i == j {
				continue
			}
			c := Contact{
				Observer: observer.agent.ID(),
				Target:   target.agent.ID(),
				Distance: common.Distance(observer.agent.Position(), target.agent.Position()),
				Detected: observer.detector.Detect(target.agent),
			}
			report.Contacts = append(report.Contacts, c)
			m.logger.Debug("detection evaluated",
				"tick", m.ticks, "observer", c.Observer, "target", c.Target,
				"distance", c.Distance, "detected", c.Detected)
			if m.onContact != nil {
				m.onContact(m.ticks, c)
			}
		}
	}

	m.lastReport = report
	m.metrics.recordTick(report)
	return report
}
