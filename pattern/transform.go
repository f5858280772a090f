package pattern

// Invert flips every flag
func (p Pattern) Invert() Pattern {
	out := make([]bool, len(p.steps))
	for i, s := range p.steps {
		out[i] = !s
	}
	return wrap(out)
}

// Complement is the set complement over the step range; identical to Invert
func (p Pattern) Complement() Pattern {
	return p.Invert()
}

// Reverse returns steps in reverse order
func (p Pattern) Reverse() Pattern {
	n := len(p.steps)
	out := make([]bool, n)
	for i, s := range p.steps {
		out[n-1-i] = s
	}
	return wrap(out)
}

// Rotate moves every onset n steps later, wrapping; negative n moves earlier
func (p Pattern) Rotate(n int) Pattern {
	size := len(p.steps)
	if size == 0 {
		return p
	}
	n %= size
	if n < 0 {
		n += size
	}
	out := make([]bool, size)
	for i, s := range p.steps {
		out[(i+n)%size] = s
	}
	return wrap(out)
}

// With returns a copy with step i set to v; out-of-range i returns p unchanged
func (p Pattern) With(i int, v bool) Pattern {
	if i < 0 || i >= len(p.steps) {
		return p
	}
	out := p.Steps()
	out[i] = v
	return wrap(out)
}

// Append concatenates q after p
func (p Pattern) Append(q Pattern) Pattern {
	out := make([]bool, 0, len(p.steps)+len(q.steps))
	out = append(out, p.steps...)
	out = append(out, q.steps...)
	return wrap(out)
}

// Repeat concatenates n copies of p
func (p Pattern) Repeat(n int) Pattern {
	if n < 1 {
		return Empty(0)
	}
	out := make([]bool, 0, len(p.steps)*n)
	for i := 0; i < n; i++ {
		out = append(out, p.steps...)
	}
	return wrap(out)
}

// Resize truncates or pads with rests to n steps
func (p Pattern) Resize(n int) Pattern {
	if n < 0 {
		n = 0
	}
	out := make([]bool, n)
	copy(out, p.steps)
	return wrap(out)
}

// Expand repeats p to fill steps; steps must be a multiple of StepCount
// Non-multiples are filled cyclically and truncated
func (p Pattern) Expand(steps int) Pattern {
	size := len(p.steps)
	if size == 0 || steps <= 0 {
		return Empty(steps)
	}
	out := make([]bool, steps)
	for i := range out {
		out[i] = p.steps[i%size]
	}
	return wrap(out)
}
