package console

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/fillmem/metrics"
	"github.com/lixenwraith/fillmem/status"
	"github.com/lixenwraith/fillmem/stress"
)

const megabyte = 1024 * 1024

// command runs one verb; the returned result labels the outcome.
// A non-nil error means the editor refused output.
type command struct {
	help string
	run  func(args []string) (string, error)
}

func (c *Console) commandTable() map[string]command {
	return map[string]command{
		"touch": {"touch          increment every byte held", c.touch},
		"grow":  {"grow <megs>    allocate and fill <megs> more megabytes", c.grow},
		"free":  {"free           release every buffer", c.free},
		"stats": {"stats          show the latest statistics sample", c.stats},
		"help":  {"help           list commands", c.help},
	}
}

// Dispatch executes one submitted line
func (c *Console) Dispatch(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	verb := fields[0]
	cmd, ok := c.commands[verb]
	if !ok {
		c.record(verb, metrics.ResultUnknown, 0)
		return c.ed.Log(fmt.Sprintf("%q not understood", verb))
	}

	start := time.Now()
	result, err := cmd.run(fields[1:])
	c.record(verb, result, time.Since(start))
	c.held.Set(float64(c.arena.Size()) / megabyte)
	return err
}

func (c *Console) record(verb, result string, elapsed time.Duration) {
	if c.cfg.Recorder != nil {
		c.cfg.Recorder.CommandDone(verb, result, elapsed)
	}
}

// interrupted reports an aborted workload
func (c *Console) interrupted() (string, error) {
	return metrics.ResultInterrupted, c.ed.Log("interrupted!")
}

func (c *Console) touch(args []string) (string, error) {
	res, err := c.arena.Touch(c.ed)
	if errors.Is(err, stress.ErrInterrupted) {
		return c.interrupted()
	}
	return metrics.ResultOK, c.ed.Log(fmt.Sprintf("touched %d megabytes in %d msec",
		res.Megabytes(), res.Elapsed.Milliseconds()))
}

func (c *Console) grow(args []string) (string, error) {
	if len(args) == 0 {
		return metrics.ResultError, c.ed.Log("grow by how much?")
	}

	megs, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return metrics.ResultError, c.ed.Log(err.Error())
	}

	res, err := c.arena.Grow(megs, c.ed)
	switch {
	case errors.Is(err, stress.ErrInterrupted):
		return c.interrupted()
	case err != nil:
		return metrics.ResultError, c.ed.Log(err.Error())
	}
	return metrics.ResultOK, c.ed.Log(fmt.Sprintf("grew by %d megabytes in %d msec",
		res.Megabytes(), res.Elapsed.Milliseconds()))
}

func (c *Console) free(args []string) (string, error) {
	held := c.arena.Free()
	debug.FreeOSMemory()
	return metrics.ResultOK, c.ed.Log(fmt.Sprintf("freed %d megabytes", held/megabyte))
}

func (c *Console) stats(args []string) (string, error) {
	last := c.cfg.Status.Strings.Get(status.LastSample).Load()
	if last == "" {
		last = "no statistics sampled yet"
	}
	if err := c.ed.Log(last); err != nil {
		return metrics.ResultError, err
	}
	return metrics.ResultOK, c.ed.Log(fmt.Sprintf("holding %d megabytes in %d buffers",
		c.arena.Size()/megabyte, c.arena.Buffers()))
}

func (c *Console) help(args []string) (string, error) {
	verbs := make([]string, 0, len(c.commands))
	for verb := range c.commands {
		verbs = append(verbs, verb)
	}
	sort.Strings(verbs)

	for _, verb := range verbs {
		if err := c.ed.Log(c.commands[verb].help); err != nil {
			return metrics.ResultError, err
		}
	}
	return metrics.ResultOK, nil
}
