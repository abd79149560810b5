// Package gpu implements the GPU backend abstraction: device capability
// query, program compilation, kernel dispatch, and buffer management, with
// a constant-memory split-program policy so no single compiled program has
// to hold the curve tables, the wordlist, and per-class constants at once.
// It exposes a Backend interface, a pure-Go CPU fallback that is always
// available, and a cgo-gated file (backend_cgo.go) for the real
// OpenCL-class and fixed-point-shader devices.
package gpu

import (
	"context"
	"errors"
)

// Device-level failures. A dispatch error gets one retry; anything else
// aborts the scan that hit it.
var (
	ErrDeviceNotAvailable = errors.New("gpu: backend not available")
	ErrBatchTooLarge      = errors.New("gpu: batch size exceeds maximum")
	ErrProgramNotFound    = errors.New("gpu: program does not own requested kernel")
	ErrKernelExecution    = errors.New("gpu: kernel execution failed")
)

// BackendKind enumerates the supported execution backends.
type BackendKind uint8

const (
	BackendCPU BackendKind = iota
	BackendOpenCL
	BackendFixedPointShader // Metal/WebGPU-class integer-only dialect
)

// DeviceCapabilities describes the limits the dispatcher must size work
// against.
type DeviceCapabilities struct {
	Kind                           BackendKind
	MaxWorkGroupSize               int
	PreferredWorkGroupSizeMultiple int
	MaxComputeUnits                int
	ConstantMemoryBytes            int // ~64KB ceiling on commodity GPUs
}

// Profile names a compiled program bundle that respects the
// constant-memory ceiling by covering only a subset of kernels.
type Profile string

const (
	// ProfileHashOnly runs PRNG→mnemonic→hash with no secp256k1 arithmetic;
	// used as a cheap filter over the full parameter range.
	ProfileHashOnly Profile = "HashOnly"
	// ProfileFullDerivation completes the chain to address for survivors.
	ProfileFullDerivation Profile = "FullDerivation"
)

// ProgramHandle identifies a compiled program bundle.
type ProgramHandle struct {
	Profile Profile
	id      int
}

// BufferHandle identifies an allocated device (or host-mapped) buffer.
type BufferHandle struct {
	id     int
	size   int
	pinned bool
}

// EventHandle identifies an in-flight or completed kernel dispatch.
type EventHandle struct{ id int }

// KernelFunc computes one candidate's result for lane index i of a batch.
// Backends invoke this once per lane with no cross-lane synchronization,
// modeling a barrier-less SIMT dispatch.
type KernelFunc func(lane int) (output []byte, ok bool)

// Backend is the device abstraction every scan worker dispatches through.
// The orchestrator never talks to a concrete backend type directly.
type Backend interface {
	DeviceInfo() DeviceCapabilities
	CompileProgram(profile Profile, kernelNames []string) (ProgramHandle, error)
	AllocateBuffer(size int, pinned bool) (BufferHandle, error)
	EnqueueKernel(ctx context.Context, program ProgramHandle, kernelName string, globalSize int, fn KernelFunc) (EventHandle, error)
	ReadBuffer(handle BufferHandle) ([]byte, error)
	Synchronize(ctx context.Context, ev EventHandle) error
}

// WorkSize chooses a local work-group size that is a multiple of the
// device's preferred multiple and does not exceed its maximum, then rounds
// the global size up to a multiple of the local size.
func WorkSize(caps DeviceCapabilities, batchSize int) (local, global int) {
	local = caps.PreferredWorkGroupSizeMultiple
	if local <= 0 {
		local = 1
	}
	if local > caps.MaxWorkGroupSize && caps.MaxWorkGroupSize > 0 {
		local = caps.MaxWorkGroupSize
	}
	global = batchSize
	if rem := global % local; rem != 0 {
		global += local - rem
	}
	return local, global
}
