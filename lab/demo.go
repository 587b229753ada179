package lab

type demoStage int

const (
	demoDrip demoStage = iota
	demoPourWait
	demoSettle
	demoSettleHold
	demoSwirl
	demoDone
)

// demoScript runs the canned bench sequence: drip indicator, pour powder,
// wait for it to settle, then stir until it dissolves.
type demoScript struct {
	stage     demoStage
	timer     float32
	dropsDone int
}

func newDemoScript() *demoScript {
	return &demoScript{}
}

func (d *demoScript) done() bool {
	return d.stage == demoDone
}

func (d *demoScript) advance(next demoStage) {
	d.stage = next
	d.timer = 0
}

func (d *demoScript) update(l *Lab, dt float32) {
	cfg := l.cfg.Demo
	d.timer += dt

	switch d.stage {
	case demoDrip:
		if d.timer >= float32(cfg.DropIntervalSec) {
			d.timer = 0
			l.DropIndicator()
			d.dropsDone++
			if d.dropsDone >= cfg.DropCount {
				Logf("[DEMO] dripped %d indicator drops @ tick %d", d.dropsDone, l.tick)
				d.advance(demoPourWait)
			}
		}

	case demoPourWait:
		if d.timer >= float32(cfg.PourDelaySec) {
			l.PourPowder()
			Logf("[DEMO] poured powder @ tick %d", l.tick)
			d.advance(demoSettle)
		}

	case demoSettle:
		if !l.powder.Dropping() {
			Logf("[DEMO] powder settled (%d grains) @ tick %d", l.powder.SettledTotal(), l.tick)
			d.advance(demoSettleHold)
		}

	case demoSettleHold:
		if d.timer >= float32(cfg.SettleWaitSec+cfg.SwirlDelaySec) {
			l.ToggleSwirl()
			Logf("[DEMO] swirling @ tick %d", l.tick)
			d.advance(demoSwirl)
		}

	case demoSwirl:
		if !l.powder.Swirling() {
			Logf("[DEMO] finished, pH=%.2f @ tick %d", l.chem.PHScore(), l.tick)
			d.advance(demoDone)
		}

	case demoDone:
	}
}
