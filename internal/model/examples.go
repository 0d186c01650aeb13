package model

// NewChain builds the three-variable chain A → B → C.
//
//	P(A=true) = 0.6
//	P(B=true | A) = 0.1, 0.8       (A=false, A=true)
//	P(C=true | B) = 0.4, 0.7       (B=false, B=true)
func NewChain() *Model {
	a, b, c := Boolean("A"), Boolean("B"), Boolean("C")
	return MustNew("chain", []*Variable{a, b, c}, []Factor{
		MustCPT(a, nil, []float64{0.4, 0.6}),
		MustCPT(b, []*Variable{a}, []float64{0.9, 0.1, 0.2, 0.8}),
		MustCPT(c, []*Variable{b}, []float64{0.6, 0.4, 0.3, 0.7}),
	})
}

// NewFireAlarm builds the tampering / fire / alarm / smoke / leaving /
// report network.
func NewFireAlarm() *Model {
	ta := Boolean("Tampering")
	fi := Boolean("Fire")
	al := Boolean("Alarm")
	sm := Boolean("Smoke")
	le := Boolean("Leaving")
	re := Boolean("Report")
	return MustNew("fire_alarm", []*Variable{ta, fi, al, sm, le, re}, []Factor{
		MustCPT(ta, nil, []float64{0.98, 0.02}),
		MustCPT(fi, nil, []float64{0.99, 0.01}),
		MustCPT(sm, []*Variable{fi}, []float64{0.99, 0.01, 0.1, 0.9}),
		MustCPT(al, []*Variable{fi, ta}, []float64{
			0.9999, 0.0001, // fire=false, tampering=false
			0.15, 0.85, // fire=false, tampering=true
			0.01, 0.99, // fire=true, tampering=false
			0.5, 0.5, // fire=true, tampering=true
		}),
		MustCPT(le, []*Variable{al}, []float64{0.999, 0.001, 0.12, 0.88}),
		MustCPT(re, []*Variable{le}, []float64{0.99, 0.01, 0.25, 0.75}),
	})
}

// NewSprinkler builds the season / sprinkler / rain / wet-grass network.
func NewSprinkler() *Model {
	season := MustVariable("Season", "summer", "winter")
	sprinkler := MustVariable("Sprinkler", "on", "off")
	rained := Boolean("Rained")
	wet := Boolean("Grass_wet")
	shiny := Boolean("Grass_shiny")
	shoes := Boolean("Shoes_wet")
	return MustNew("sprinkler",
		[]*Variable{season, sprinkler, rained, wet, shiny, shoes},
		[]Factor{
			MustCPT(season, nil, []float64{0.5, 0.5}),
			MustCPT(sprinkler, []*Variable{season}, []float64{0.9, 0.1, 0.01, 0.99}),
			MustCPT(rained, []*Variable{season}, []float64{0.9, 0.1, 0.2, 0.8}),
			MustCPT(wet, []*Variable{sprinkler, rained}, []float64{
				0.1, 0.9, // on, no rain
				0.01, 0.99, // on, rain
				0.99, 0.01, // off, no rain
				0.3, 0.7, // off, rain
			}),
			MustCPT(shiny, []*Variable{wet}, []float64{0.95, 0.05, 0.3, 0.7}),
			MustCPT(shoes, []*Variable{wet}, []float64{0.98, 0.02, 0.35, 0.65}),
		})
}

// Examples returns the example factories keyed by model name.
func Examples() map[string]func() *Model {
	return map[string]func() *Model{
		"chain":      NewChain,
		"fire_alarm": NewFireAlarm,
		"sprinkler":  NewSprinkler,
	}
}
