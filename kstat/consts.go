package kstat

// Well-known modules, names and statistics
const (
	ModuleCPUInfo = "cpu_info"
	StatClockMHz  = "clock_MHz"

	ModuleUnix     = "unix"
	NameSystemMisc = "system_misc"
	StatBootTime   = "boot_time"
	StatNProc      = "nproc"

	NameSystemPages = "system_pages"
	StatFreemem     = "freemem"
	StatPhysmem     = "physmem"
	StatAvailrmem   = "availrmem"

	ModuleZFS    = "zfs"
	NameArcstats = "arcstats"
	StatC        = "c"
	StatCMin     = "c_min"
	StatCMax     = "c_max"

	ModuleDisk = "disk"
	ClassDisk  = "disk"
)
