package stream

// Lift applies f pointwise to every explicit entry of the input stream,
// producing ↑f. It relies on f having the zero-preservation
// property (f(zero) == zero) so that times with no explicit input entry
// need no explicit output entry either — true of every stateless Z-set
// operator wired through lift in this engine.
func Lift[A, B any](f func(A) (B, error), groupB Group[B]) func(*Stream[A]) (*Stream[B], error) {
	return func(s *Stream[A]) (*Stream[B], error) {
		out := New(groupB)
		for _, t := range s.Times() {
			v, err := f(s.At(t))
			if err != nil {
				return nil, err
			}
			out.Set(t, v)
		}
		return out, nil
	}
}

// Delay implements z⁻¹: the stream shifted forward by one timestep, with
// the group's zero element at time 0.
func Delay[A any](s *Stream[A]) *Stream[A] {
	out := New(s.group)
	for _, t := range s.Times() {
		out.Set(t+1, s.At(t))
	}
	return out
}

// Integrate implements I: I(s)[t] = Σ(i=0..t) s[i], emitted densely at
// every t in [0, maxT] over the whole observed range, not only at times
// the input happened to set explicitly.
func Integrate[A any](s *Stream[A]) (*Stream[A], error) {
	out := New(s.group)
	maxT := s.maxSetTime()
	if maxT < 0 {
		return out, nil
	}
	acc := s.group.Zero()
	for t := 0; t <= maxT; t++ {
		var err error
		acc, err = s.group.Add(acc, s.At(t))
		if err != nil {
			return nil, err
		}
		out.Set(t, acc)
	}
	return out, nil
}

// Differentiate implements D: D(s)[t] = s[t] - s[t-1]. It emits only at
// times where s[t] is non-zero or the preceding s[t-1] was non-zero, not
// at every t in [0, maxT] — this is what makes D(I(s)) == s hold
// record-for-record on a sparse input stream.
func Differentiate[A any](s *Stream[A]) (*Stream[A], error) {
	out := New(s.group)
	maxT := s.maxSetTime()
	if maxT < 0 {
		return out, nil
	}
	prev := s.group.Zero()
	for t := 0; t <= maxT; t++ {
		cur := s.At(t)
		if !s.group.IsZero(cur) || !s.group.IsZero(prev) {
			delta, err := s.group.Add(cur, s.group.Negate(prev))
			if err != nil {
				return nil, err
			}
			if !s.group.IsZero(delta) {
				out.Set(t, delta)
			}
		}
		prev = cur
	}
	return out, nil
}

// Incrementalize builds Q^Δ = D ∘ Q ∘ I from a query Q over snapshot
// streams: the standard recipe for turning any batch query into an
// incremental one that consumes and produces delta streams.
func Incrementalize[A, B any](q func(*Stream[A]) (*Stream[B], error)) func(*Stream[A]) (*Stream[B], error) {
	return func(delta *Stream[A]) (*Stream[B], error) {
		integrated, err := Integrate(delta)
		if err != nil {
			return nil, err
		}
		snapshot, err := q(integrated)
		if err != nil {
			return nil, err
		}
		return Differentiate(snapshot)
	}
}
