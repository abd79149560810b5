//go:build cgo

// This file declares the real OpenCL-class and fixed-point-shader backends
// behind cgo: forward-declared C entry points, a device-availability
// probe, and a Go type that satisfies the Backend interface by delegating
// to them. Neither the OpenCL ICD loader nor the
// Metal/WebGPU shader compiler this would link against ships with this
// module — the vulnerable wallet software's kernels are reference
// algorithms here (package prng/curve/mnemonic/address), not hardware
// programs, so this file intentionally never builds a real device path. It
// documents where that integration point lives.
package gpu

/*
#include <stdint.h>
#include <stdbool.h>

// Forward declarations a real build would resolve against an OpenCL ICD
// loader (libOpenCL) or a platform shader runtime (Metal/WebGPU).
bool walletforensics_device_available(int backend_kind);
*/
import "C"

import "context"

// openCLBackend is declared but never constructed from this package's
// exported surface: Default() (cpu_backend.go) always returns the CPU
// backend. A real deployment would probe C.walletforensics_device_available
// and, on success, return a device backend instead.
type openCLBackend struct{ caps DeviceCapabilities }

func (b *openCLBackend) DeviceInfo() DeviceCapabilities { return b.caps }
func (b *openCLBackend) CompileProgram(Profile, []string) (ProgramHandle, error) {
	return ProgramHandle{}, ErrDeviceNotAvailable
}
func (b *openCLBackend) AllocateBuffer(int, bool) (BufferHandle, error) {
	return BufferHandle{}, ErrDeviceNotAvailable
}
func (b *openCLBackend) EnqueueKernel(context.Context, ProgramHandle, string, int, KernelFunc) (EventHandle, error) {
	return EventHandle{}, ErrDeviceNotAvailable
}
func (b *openCLBackend) ReadBuffer(BufferHandle) ([]byte, error) {
	return nil, ErrDeviceNotAvailable
}
func (b *openCLBackend) Synchronize(context.Context, EventHandle) error {
	return ErrDeviceNotAvailable
}

// deviceAvailable probes the cgo-declared capability check. It is only
// reachable from code explicitly built with a device SDK present; no
// caller in this module invokes it today.
func deviceAvailable(kind BackendKind) bool {
	return bool(C.walletforensics_device_available(C.int(kind)))
}
