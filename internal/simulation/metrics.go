package simulation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "maneuver-sim/internal/simulation"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	ticks      metric.Int64Counter
	evaluated  metric.Int64Counter
	detections metric.Int64Counter
	agents     metric.Int64UpDownCounter
}

func newInstruments() (*instruments, error) {
	m := meter()
	var (
		inst instruments
		err  error
	)
	inst.ticks, err = m.Int64Counter(
		"maneuver.ticks",
		metric.WithDescription("Total simulation ticks executed"),
	)
	if err != nil {
		return nil, err
	}
	inst.evaluated, err = m.Int64Counter(
		"maneuver.pairs.evaluated",
		metric.WithDescription("Total ordered agent pairs evaluated for detection"),
	)
	if err != nil {
		return nil, err
	}
	inst.detections, err = m.Int64Counter(
		"maneuver.detections",
		metric.WithDescription("Total positive detections"),
	)
	if err != nil {
		return nil, err
	}
	inst.agents, err = m.Int64UpDownCounter(
		"maneuver.agents",
		metric.WithDescription("Registered agents"),
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func noopInstruments() *instruments {
	m := noop.NewMeterProvider().Meter(instrumentationName)
	ticks, _ := m.Int64Counter("maneuver.ticks")
	evaluated, _ := m.Int64Counter("maneuver.pairs.evaluated")
	detections, _ := m.Int64Counter("maneuver.detections")
	agents, _ := m.Int64UpDownCounter("maneuver.agents")
	return &instruments{ticks: ticks, evaluated: evaluated, detections: detections, agents: agents}
}

func (i *instruments) recordRegistration() {
	i.agents.Add(context.Background(), 1)
}

func (i *instruments) recordTick(report TickReport) {
	ctx := context.Background()
	i.ticks.Add(ctx, 1)
	i.evaluated.Add(ctx, int64(len(report.Contacts)))
	for _, c := range report.Contacts {
		if c.Detected {
			i.detections.Add(ctx, 1, metric.WithAttributes(attribute.String("observer", c.Observer)))
		}
	}
}
