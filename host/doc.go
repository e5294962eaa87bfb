// Package host implements a minimal USB host that enumerates one
// full-speed device.
//
// It talks to the bus through the [hal.HostHAL] interface defined in
// github.com/ardnew/pmausb/host/hal and exists to exercise device
// firmware end to end: reset, partial device descriptor, SET_ADDRESS,
// full device descriptor, GET_STATUS, SET_CONFIGURATION and
// GET_CONFIGURATION.
//
// # Example
//
//	s, _ := stm32.NewSimulator(stm32.LayoutGapped, nil)
//	platform := stm32.NewPlatform(s.Memory(), s.Registers(), nil)
//	engine := device.NewEngine(platform, &device.DefaultDeviceDescriptor)
//
//	h := host.New(sim.New(s, engine.LowPriorityInterrupt, nil))
//	dev, err := h.Enumerate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%04X:%04X\n", dev.Descriptor().VendorID, dev.Descriptor().ProductID)
//
// Every transfer can be observed with [WithObserver], which the pmasim
// command uses to print an enumeration trace.
package host
