package bandit

// Random picks arms uniformly and never learns. It is the comparison baseline.
type Random struct {
	nArms int
	src   Source
}

var _ Policy = (*Random)(nil)

func NewRandom(nArms int, src Source) (*Random, error) {
	if err := checkSetup(nArms, src); err != nil {
		return nil, err
	}

	return &Random{nArms: nArms, src: src}, nil
}

func (r *Random) SelectArm() int {
	return r.src.Intn(r.nArms)
}

func (r *Random) Update(arm int, _ float64) error {
	return checkArm(arm, r.nArms)
}

func (r *Random) Kind() Kind {
	return KindRandom
}

func (r *Random) Arms() int {
	return r.nArms
}
