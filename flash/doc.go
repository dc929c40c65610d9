// Package flash manages the lifecycle of a microcontroller's application
// image in on-chip flash: erase-before-write enforcement, streamed writes
// with an internal cursor, CRC-32 integrity verification, and the terminal
// jump to the application's entry point.
//
// # Overview
//
// The Manager sits inside a bootloader, between whatever transport
// delivers a new image and the hardware-specific flash driver:
//   - Erasing the application region exactly once per update session
//   - Programming the image directly or as an arbitrary-chunked stream
//   - Computing the application checksum for post-write verification
//   - Tearing down peripherals and jumping through the reset vector
//
// # Basic Usage
//
// Stream an image and hand off to it:
//
//	// Hardware family supplies the capability set (platform.Ops)
//	mgr, err := flash.New(flash.DefaultRegion, flash.WithPlatform(ops))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for chunk := range imageChunks {
//	    if err := mgr.WriteStream(chunk); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
//	sum, err := mgr.ChecksumApp()
//	if err != nil || sum != expected {
//	    log.Fatal("image did not verify")
//	}
//
//	mgr.JumpToApp() // does not return on real hardware
//
// The first write of a session triggers the erase automatically; callers
// never need to sequence it themselves, though Erase can be invoked
// directly to restart an update.
//
// # Error Handling
//
// All failures are reported as return values; there is no panic channel.
// The package provides structured error types:
//   - ErrUnconfigured: no platform capability set bound
//   - EraseError: the erase primitive failed; the next write retries it
//   - WriteError: the platform's post-write readback failed
//   - RangeError: a streamed write would run past the region end
//   - RegionError: invalid region configuration
//
// No operation retries automatically; retry policy belongs to the caller.
//
// # Hardware Independence
//
// This package does NOT implement hardware access. Every flash and
// peripheral operation goes through platform.Ops, so different
// microcontroller families plug in without any change here. An in-memory
// implementation, platform.Simulator, backs the tests and examples.
//
// # Point of No Return
//
// JumpToApp never validates the target image: the caller must guarantee a
// valid, fully written image exists before invoking it. Once peripheral
// teardown begins no failure can be reported back, so any verification
// must happen strictly before the call.
package flash
