package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Info contains adapter identification parsed from the Get Info reply.
type Info struct {
	// MCU is the adapter's microcontroller name
	MCU string

	// Mode is the adapter's reported operating mode
	Mode string

	// Name is the adapter's product name
	Name string

	// FirmwareVersion is the adapter firmware version string
	FirmwareVersion string

	// HardwareVersion is the adapter hardware revision string
	HardwareVersion string
}

// ParseInfo parses the Get Info reply: a fixed-size block of
// newline-delimited "KEY: value" lines, NUL-padded to InfoReplySize.
//
// Example block:
//
//	INFO
//	MCU: STM32F042
//	MODE: full
//	NAME: neofoxx-probe
//	FW: 1.2
//	HW: rev-b
//
// Unknown lines are ignored so newer firmware can add fields. An
// error is returned when the block carries no MCU identification,
// since the adapter is unusable without it.
func ParseInfo(block []byte) (*Info, error) {
	// Drop NUL padding; the adapter always sends a full fixed-size reply.
	if i := bytes.IndexByte(block, 0); i >= 0 {
		block = block[:i]
	}

	info := &Info{}
	sc := bufio.NewScanner(bytes.NewReader(block))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		key, value, found := strings.Cut(line, " ")
		if !found {
			continue // INFO banner or malformed line
		}
		switch key {
		case "MCU:":
			info.MCU = value
		case "MODE:":
			info.Mode = value
		case "NAME:":
			info.Name = value
		case "FW:":
			info.FirmwareVersion = value
		case "HW:":
			info.HardwareVersion = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan info block: %w", err)
	}
	if info.MCU == "" {
		return nil, fmt.Errorf("info block carries no MCU identification")
	}
	return info, nil
}
