package kstat

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// splKstats reads <proc>/spl/kstat/<module>/<name> files (ZFS on Linux kstat text format)
func splKstats(opts Options) ([]*Kstat, error) {
	root := filepath.Join(opts.ProcRoot, "spl", "kstat")
	modules, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("spl kstat: %w", err)
	}

	var out []*Kstat
	for _, m := range modules {
		if !m.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, m.Name()))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			k, err := parseSPLFile(filepath.Join(root, m.Name(), e.Name()))
			if err != nil {
				continue
			}
			k.Module = m.Name()
			k.Name = e.Name()
			out = append(out, k)
		}
	}
	return out, nil
}

// parseSPLFile parses one named kstat:
//
//	<kid> <type> <flags> <ndata> <data_size> <crtime> <snaptime>
//	name                            type data
//	hits                            4    123456
func parseSPLFile(path string) (*Kstat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)

	if !sc.Scan() {
		return nil, fmt.Errorf("%s: empty", path)
	}
	header := strings.Fields(sc.Text())
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: bad header", path)
	}
	if kind, err := strconv.Atoi(header[1]); err != nil || Kind(kind) != KindNamed {
		return nil, fmt.Errorf("%s: not a named kstat", path)
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("%s: missing column header", path)
	}

	k := &Kstat{Class: "misc", Kind: KindNamed}
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		t, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		n := Named{Name: fields[0], Type: Type(t)}
		data := ""
		if len(fields) > 2 {
			data = strings.Join(fields[2:], " ")
		}

		switch n.Type {
		case TypeChar:
			n.Str = data
		case TypeInt32, TypeInt64:
			v, err := strconv.ParseInt(data, 10, 64)
			if err != nil {
				continue
			}
			n.Value = uint64(v)
		case TypeUint32, TypeUint64:
			v, err := strconv.ParseUint(data, 10, 64)
			if err != nil {
				continue
			}
			n.Value = v
		default:
			continue
		}
		k.named = append(k.named, n)
	}
	return k, sc.Err()
}
