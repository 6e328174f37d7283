package pulsar

import "time"

// Pulsar generates pulses at a fixed period. Control loops (scheduler
// reconciliation, maintenance expansion) range over the returned channel:
//
//	p := pulsar.NewPulsar(10, time.Second)
//	for range p.Pulsate() {
//		loop.Run()
//	}
type Pulsar struct {
	Period time.Duration

	pulse   *time.Ticker
	kill    chan bool
	pulsate chan time.Time
}

func NewPulsar(period int, timeUnit time.Duration) *Pulsar {
	return &Pulsar{
		Period:  time.Duration(period) * timeUnit,
		pulse:   time.NewTicker(time.Duration(period) * timeUnit),
		kill:    make(chan bool),
		pulsate: make(chan time.Time),
	}
}

// Pulsate starts emitting pulses on the returned channel. The channel is
// closed after Stop, releasing any consumer ranged over it.
func (p *Pulsar) Pulsate() chan time.Time {
	go func() {
		defer close(p.pulsate)
		defer p.pulse.Stop()

		for {
			select {
			case <-p.kill:
				return
			case t := <-p.pulse.C:
				p.pulsate <- t
			}
		}
	}()

	return p.pulsate
}

// Stop ends the pulse stream.
func (p *Pulsar) Stop() {
	close(p.kill)
}
