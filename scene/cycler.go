// Package scene steps through the patterns of a stringed result on an external cadence
package scene

import (
	"sync"

	"github.com/lixenwraith/upi-engine/parameter"
	"github.com/lixenwraith/upi-engine/pattern"
	"github.com/lixenwraith/upi-engine/upi"
)

// Cycler tracks the active scene; each scene is held for Hold triggers before moving on
type Cycler struct {
	mu     sync.Mutex
	scenes []pattern.Pattern
	hold   int
	index  int
	ticks  int // triggers spent on the current scene
	loops  int // completed passes through every scene
}

// NewCycler creates a cycler over scenes; hold < 1 uses the default
func NewCycler(scenes []pattern.Pattern, hold int) *Cycler {
	if hold < 1 {
		hold = parameter.DefaultScenesPerAdvance
	}
	cp := make([]pattern.Pattern, len(scenes))
	copy(cp, scenes)
	return &Cycler{scenes: cp, hold: hold}
}

// FromResult builds a cycler from a parse result; non-stringed results give one scene
func FromResult(res upi.Result, hold int) *Cycler {
	switch res.Kind {
	case upi.KindStringed:
		return NewCycler(res.Scenes, hold)
	case upi.KindError:
		return NewCycler(nil, hold)
	}
	return NewCycler([]pattern.Pattern{res.Pattern}, hold)
}

// Len returns the scene count
func (c *Cycler) Len() int {
	return len(c.scenes)
}

// Current returns the active scene index and pattern; ok is false when there are no scenes
func (c *Cycler) Current() (int, pattern.Pattern, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.scenes) == 0 {
		return 0, pattern.Pattern{}, false
	}
	return c.index, c.scenes[c.index], true
}

// Advance registers one trigger and returns the scene active after it
func (c *Cycler) Advance() (int, pattern.Pattern, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.scenes) == 0 {
		return 0, pattern.Pattern{}, false
	}
	c.ticks++
	if c.ticks >= c.hold {
		c.ticks = 0
		c.index++
		if c.index == len(c.scenes) {
			c.index = 0
			c.loops++
		}
	}
	return c.index, c.scenes[c.index], true
}

// Select jumps to scene i, wrapping out-of-range values
func (c *Cycler) Select(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.scenes) == 0 {
		return
	}
	i %= len(c.scenes)
	if i < 0 {
		i += len(c.scenes)
	}
	c.index = i
	c.ticks = 0
}

// Loops returns how many times the cycler wrapped back to the first scene
func (c *Cycler) Loops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loops
}

// Reset returns to the first scene
func (c *Cycler) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index, c.ticks, c.loops = 0, 0, 0
}
