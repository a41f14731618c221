package safecall

// defaultPolicy decides what a cancelled wrapper returns.
//
// With no explicit default the zero value of R is used; every Go type
// has one, so there is no construction-time constraint to enforce. An
// explicit default is returned as-is on every post-cancellation call;
// note that for reference types (slices, maps, pointers) every call then
// shares the same underlying data.
//
// A single-use default is moved out on the first post-cancellation call.
// The policy is read and mutated only under the owning wrapper's lock.
type defaultPolicy[R any] struct {
	value  R
	single bool
	taken  bool
}

func (d *defaultPolicy[R]) take() R {
	if !d.single {
		return d.value
	}
	if d.taken {
		var zero R
		return zero
	}
	d.taken = true
	v := d.value
	var zero R
	d.value = zero
	return v
}
