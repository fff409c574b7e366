package unit

import "fmt"

// Pilot flies one aircraft. Stress only grows during a mission.
type Pilot struct {
	Name        string
	StrikeSkill int
	CannonSkill int
	Coolness    int
	stress      int
}

// NewPilot returns a pilot with no stress.
func NewPilot(name string, strike, cannon, coolness int) *Pilot {
	return &Pilot{Name: name, StrikeSkill: strike, CannonSkill: cannon, Coolness: coolness}
}

// Stress returns the accumulated stress.
func (p *Pilot) Stress() int {
	return p.stress
}

// AddStress adds n to the pilot's stress.
func (p *Pilot) AddStress(n int) error {
	if n < 0 {
		return fmt.Errorf("add stress %d: %w", n, ErrPreconditionFailed)
	}
	p.stress += n
	return nil
}
