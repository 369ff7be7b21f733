//go:build linux

package kstat

import (
	"fmt"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/blockdevice"
)

// Sector size used by /proc/diskstats regardless of device geometry
const sectorSize = 512

func providers() []provider {
	return []provider{splKstats, systemPages, systemMisc, cpuInfo, diskIO}
}

// systemPages synthesizes unix:0:system_pages from meminfo
func systemPages(opts Options) ([]*Kstat, error) {
	fs, err := procfs.NewFS(opts.ProcRoot)
	if err != nil {
		return nil, err
	}
	mi, err := fs.Meminfo()
	if err != nil {
		return nil, fmt.Errorf("meminfo: %w", err)
	}

	pages := func(kb *uint64) uint64 {
		if kb == nil {
			return 0
		}
		return *kb * 1024 / opts.PageSize
	}

	return []*Kstat{{
		Module: ModuleUnix,
		Name:   NameSystemPages,
		Class:  "pages",
		Kind:   KindNamed,
		named: []Named{
			{Name: StatPhysmem, Type: TypeUint64, Value: pages(mi.MemTotal)},
			{Name: StatFreemem, Type: TypeUint64, Value: pages(mi.MemFree)},
			{Name: StatAvailrmem, Type: TypeUint64, Value: pages(mi.MemAvailable)},
		},
	}}, nil
}

// systemMisc synthesizes unix:0:system_misc from stat and the process table
func systemMisc(opts Options) ([]*Kstat, error) {
	fs, err := procfs.NewFS(opts.ProcRoot)
	if err != nil {
		return nil, err
	}
	st, err := fs.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	var nproc uint64
	if procs, err := fs.AllProcs(); err == nil {
		nproc = uint64(len(procs))
	}

	return []*Kstat{{
		Module: ModuleUnix,
		Name:   NameSystemMisc,
		Class:  "misc",
		Kind:   KindNamed,
		named: []Named{
			{Name: StatBootTime, Type: TypeUint32, Value: st.BootTime},
			{Name: StatNProc, Type: TypeUint32, Value: nproc},
		},
	}}, nil
}

// cpuInfo synthesizes cpu_info:<n>:cpu_info<n>
func cpuInfo(opts Options) ([]*Kstat, error) {
	fs, err := procfs.NewFS(opts.ProcRoot)
	if err != nil {
		return nil, err
	}
	cpus, err := fs.CPUInfo()
	if err != nil {
		return nil, fmt.Errorf("cpuinfo: %w", err)
	}

	out := make([]*Kstat, 0, len(cpus))
	for _, c := range cpus {
		out = append(out, &Kstat{
			Module:   ModuleCPUInfo,
			Instance: int(c.Processor),
			Name:     fmt.Sprintf("cpu_info%d", c.Processor),
			Class:    "misc",
			Kind:     KindNamed,
			named: []Named{
				{Name: StatClockMHz, Type: TypeInt64, Value: uint64(int64(c.CPUMHz))},
			},
		})
	}
	return out, nil
}

// diskIO synthesizes disk:<n>:<device> I/O kstats from diskstats
func diskIO(opts Options) ([]*Kstat, error) {
	fs, err := blockdevice.NewFS(opts.ProcRoot, opts.SysRoot)
	if err != nil {
		return nil, err
	}
	stats, err := fs.ProcDiskstats()
	if err != nil {
		return nil, fmt.Errorf("diskstats: %w", err)
	}

	out := make([]*Kstat, 0, len(stats))
	for i, d := range stats {
		out = append(out, &Kstat{
			Module:   ModuleDisk,
			Instance: i,
			Name:     d.DeviceName,
			Class:    ClassDisk,
			Kind:     KindIO,
			io: IO{
				NRead:    d.ReadSectors * sectorSize,
				NWritten: d.WriteSectors * sectorSize,
				Reads:    uint32(d.ReadIOs),
				Writes:   uint32(d.WriteIOs),
				// Tick counters are milliseconds; kstat times are nanoseconds
				RTime:    int64(d.ReadTicks) * 1e6,
				WTime:    int64(d.WriteTicks) * 1e6,
				RLenTime: int64(d.WeightedIOTicks) * 1e6,
				RCnt:     uint32(d.IOsInProgress),
			},
		})
	}
	return out, nil
}
