package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/pmausb/device"
	"github.com/ardnew/pmausb/device/hal/stm32"
	"github.com/ardnew/pmausb/host"
	"github.com/ardnew/pmausb/host/hal/sim"
	"github.com/ardnew/pmausb/pkg/config"
)

// CLI is the pmasim command line.
type CLI struct {
	Config     string `help:"Configuration file (JSON, YAML or TOML)." placeholder:"FILE"`
	LogLevel   string `name:"log-level" help:"Log level." enum:"trace,debug,info,warn,error" default:"warn"`
	LogFormat  string `name:"log-format" help:"Log format; auto writes text to a terminal and JSON otherwise." enum:"auto,text,json" default:"auto"`
	Layout     string `help:"Packet memory layout." enum:"gapped,wide" default:"gapped"`
	Descriptor string `help:"Device descriptor file (JSON, YAML or TOML)." placeholder:"FILE"`

	Enumerate EnumerateCmd `cmd:"" default:"withargs" help:"Enumerate the simulated device and print each transfer."`
	Dump      DumpCmd      `cmd:"" help:"Print the device descriptor."`
}

// descriptor returns the configured device descriptor.
func (c *CLI) descriptor() (device.DeviceDescriptor, error) {
	if c.Descriptor == "" {
		return device.DefaultDeviceDescriptor, nil
	}
	return config.Load(c.Descriptor)
}

func (c *CLI) layout() stm32.Layout {
	if c.Layout == "wide" {
		return stm32.LayoutWide
	}
	return stm32.LayoutGapped
}

// EnumerateCmd runs a host enumeration against the simulated device.
type EnumerateCmd struct {
	Mode    string `help:"GET_DESCRIPTOR answer." enum:"truncate,placeholder" default:"truncate"`
	Address uint8  `help:"Address assigned to the device." default:"1"`
}

// Run enumerates the device and writes the transfer trace to out.
func (e *EnumerateCmd) Run(cli *CLI, logger *slog.Logger, out io.Writer) error {
	desc, err := cli.descriptor()
	if err != nil {
		return err
	}

	s, err := stm32.NewSimulator(cli.layout(), logger)
	if err != nil {
		return err
	}
	platform := stm32.NewPlatform(s.Memory(), s.Registers(), logger)

	mode := device.DescriptorModeTruncate
	if e.Mode == "placeholder" {
		mode = device.DescriptorModePlaceholder
	}
	engine := device.NewEngine(platform, &desc,
		device.WithDescriptorMode(mode),
		device.WithLogger(logger),
	)
	bus := sim.New(s, engine.LowPriorityInterrupt, logger)

	fmt.Fprintf(out, "layout=%s mode=%s\n", s.Memory().Layout(), mode)

	step := 0
	h := host.New(bus,
		host.WithAddress(e.Address),
		host.WithLogger(logger),
		host.WithObserver(func(st host.Step) {
			step++
			printStep(out, step, st)
		}),
	)

	dev, err := h.Enumerate(context.Background())
	for _, derr := range bus.DeviceErrors() {
		fmt.Fprintf(out, "device: %v\n", derr)
	}
	if err != nil {
		return err
	}

	d := dev.Descriptor()
	fmt.Fprintf(out, "device %04X:%04X usb=%X.%02X address=%d configuration=%d status=0x%04X\n",
		d.VendorID, d.ProductID, d.USBVersion>>8, d.USBVersion&0xFF,
		dev.Address(), dev.Configuration(), dev.Status())
	return nil
}

func printStep(out io.Writer, n int, st host.Step) {
	var req device.SetupRequest
	b := st.Setup.Bytes()
	if err := device.ParseSetupPacket(b[:], &req); err != nil {
		return
	}
	fmt.Fprintf(out, "%2d %-20s addr=%-3d %s\n", n, st.Name, st.Address, req.String())
	if len(st.Data) > 0 {
		fmt.Fprintf(out, "   data % X\n", st.Data)
	}
	if st.Err != nil {
		fmt.Fprintf(out, "   error %v\n", st.Err)
	}
}

// DumpCmd prints the configured descriptor.
type DumpCmd struct {
	Format string `help:"Output format." enum:"hex,json,yaml,toml" default:"hex"`
}

// Run writes the descriptor to out.
func (d *DumpCmd) Run(cli *CLI, out io.Writer) error {
	desc, err := cli.descriptor()
	if err != nil {
		return err
	}

	if d.Format != "hex" {
		format, err := config.ParseFormat(d.Format)
		if err != nil {
			return err
		}
		data, err := config.Encode(desc, format)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	var buf [device.DeviceDescriptorSize]byte
	desc.MarshalTo(buf[:])
	fmt.Fprint(out, hex.Dump(buf[:]))

	words := desc.Words()
	hexWords := make([]string, len(words))
	for i, w := range words {
		hexWords[i] = fmt.Sprintf("0x%04X", w)
	}
	fmt.Fprintf(out, "words: %s\n", strings.Join(hexWords, " "))
	return nil
}
