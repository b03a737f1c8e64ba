package poller

// Registration is the poller's record of one registered handle.
type Registration struct {
	Handle Handle
	Fd     int
	Mask   EventMask
	Tag    interface{}
}

// registry maps handles and descriptors to their registrations. It does no
// locking of its own; Poller.mu guards every call.
type registry struct {
	byHandle map[Handle]*Registration
	byFd     map[int]*Registration
}

func newRegistry() *registry {
	return &registry{
		byHandle: make(map[Handle]*Registration),
		byFd:     make(map[int]*Registration),
	}
}

func (r *registry) insert(h Handle, fd int, mask EventMask, tag interface{}) error {
	if _, ok := r.byHandle[h]; ok {
		return ErrDuplicateRegistration
	}
	reg := &Registration{Handle: h, Fd: fd, Mask: mask, Tag: tag}
	r.byHandle[h] = reg
	r.byFd[fd] = reg
	return nil
}

func (r *registry) lookupByHandle(h Handle) (*Registration, error) {
	if !isComparable(h) {
		return nil, ErrNotRegistered
	}
	reg, ok := r.byHandle[h]
	if !ok {
		return nil, ErrNotRegistered
	}
	return reg, nil
}

func (r *registry) lookupByFd(fd int) (*Registration, bool) {
	reg, ok := r.byFd[fd]
	return reg, ok
}

func (r *registry) updateMask(h Handle, mask EventMask) error {
	reg, err := r.lookupByHandle(h)
	if err != nil {
		return err
	}
	reg.Mask = mask
	return nil
}

func (r *registry) updateTag(h Handle, tag interface{}) error {
	reg, err := r.lookupByHandle(h)
	if err != nil {
		return err
	}
	reg.Tag = tag
	return nil
}

// remove drops h. owned is false when another registration has taken over
// the descriptor number since h was inserted, which happens once the caller
// closes h without removing it and the kernel hands the number out again.
func (r *registry) remove(h Handle) (reg Registration, owned bool, err error) {
	cur, err := r.lookupByHandle(h)
	if err != nil {
		return Registration{}, false, err
	}
	delete(r.byHandle, h)
	if r.owns(cur) {
		delete(r.byFd, cur.Fd)
		owned = true
	}
	return *cur, owned, nil
}

func (r *registry) owns(reg *Registration) bool {
	cur, ok := r.byFd[reg.Fd]
	return ok && cur == reg
}

// all returns copies of the live registrations. An entry whose descriptor
// number was taken over by a newer registration is left out: the kernel no
// longer knows it.
func (r *registry) all() []Registration {
	regs := make([]Registration, 0, len(r.byFd))
	for _, reg := range r.byFd {
		regs = append(regs, *reg)
	}
	return regs
}

func (r *registry) len() int {
	return len(r.byHandle)
}
