package kstat

// Pages is the system page accounting
type Pages struct {
	Physmem   uint64
	Freemem   uint64
	Availrmem uint64
}

// Pages reads unix:0:system_pages
func (h *Handle) Pages() (Pages, error) {
	k, err := h.Lookup(ModuleUnix, 0, NameSystemPages)
	if err != nil {
		return Pages{}, err
	}
	var p Pages
	p.Physmem, _ = k.Uint64(StatPhysmem)
	p.Freemem, _ = k.Uint64(StatFreemem)
	p.Availrmem, _ = k.Uint64(StatAvailrmem)
	return p, nil
}

// CPUMHz reads the clock rate of the first CPU
func (h *Handle) CPUMHz() (uint64, error) {
	var found *Kstat
	h.Walk(func(k *Kstat) bool {
		if k.Module == ModuleCPUInfo {
			found = k
			return false
		}
		return true
	})
	if found == nil {
		return 0, ErrNotFound
	}
	v, ok := found.Uint64(StatClockMHz)
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

// BootTime reads the boot time in seconds since the epoch
func (h *Handle) BootTime() (uint64, error) {
	return h.Uint64(ModuleUnix, 0, NameSystemMisc, StatBootTime)
}

// NProc reads the number of processes
func (h *Handle) NProc() (uint64, error) {
	return h.Uint64(ModuleUnix, 0, NameSystemMisc, StatNProc)
}
