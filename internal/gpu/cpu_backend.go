package gpu

import (
	"context"
	"runtime"
	"sync"
)

// CPUBackend is the always-available fallback: it implements the full
// Backend interface as a goroutine worker pool running a batch-parallel
// map, one logical lane per candidate.
type CPUBackend struct {
	mu       sync.Mutex
	programs []compiledProgram
	buffers  []storedBuffer
	workers  int
}

type compiledProgram struct {
	profile     Profile
	kernelNames map[string]bool
}

type storedBuffer struct {
	data   []byte
	pinned bool
}

// NewCPUBackend constructs a CPU backend sized to GOMAXPROCS workers unless
// overridden.
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CPUBackend{workers: workers}
}

// Default returns the backend a scan worker uses when no GPU device is
// requested or available. It is always the CPU backend: this module ships
// the reference kernels, not a hardware device driver (see
// backend_cgo.go for where a real OpenCL/fixed-point-shader device would be
// probed and returned instead).
func Default() Backend {
	return NewCPUBackend(0)
}

func (b *CPUBackend) DeviceInfo() DeviceCapabilities {
	return DeviceCapabilities{
		Kind:                           BackendCPU,
		MaxWorkGroupSize:               b.workers,
		PreferredWorkGroupSizeMultiple: 1,
		MaxComputeUnits:                b.workers,
		ConstantMemoryBytes:            1 << 30, // host RAM, not a meaningful ceiling
	}
}

func (b *CPUBackend) CompileProgram(profile Profile, kernelNames []string) (ProgramHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make(map[string]bool, len(kernelNames))
	for _, n := range kernelNames {
		names[n] = true
	}
	id := len(b.programs)
	b.programs = append(b.programs, compiledProgram{profile: profile, kernelNames: names})
	return ProgramHandle{Profile: profile, id: id}, nil
}

func (b *CPUBackend) AllocateBuffer(size int, pinned bool) (BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := len(b.buffers)
	b.buffers = append(b.buffers, storedBuffer{data: make([]byte, size), pinned: pinned})
	return BufferHandle{id: id, size: size, pinned: pinned}, nil
}

// EnqueueKernel runs fn once per lane in [0, globalSize) across a bounded
// worker pool. There is no cross-lane synchronization, matching the SIMT
// contract in backend.go. The values fn returns are not collected; callers
// record per-lane results themselves, each lane writing only its own slot.
func (b *CPUBackend) EnqueueKernel(ctx context.Context, program ProgramHandle, kernelName string, globalSize int, fn KernelFunc) (EventHandle, error) {
	b.mu.Lock()
	prog := b.programs[program.id]
	b.mu.Unlock()
	if !prog.kernelNames[kernelName] {
		return EventHandle{}, ErrProgramNotFound
	}

	lanes := make(chan int, globalSize)
	for i := 0; i < globalSize; i++ {
		lanes <- i
	}
	close(lanes)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lane := range lanes {
				select {
				case <-ctx.Done():
					return
				default:
				}
				fn(lane)
			}
		}()
	}
	wg.Wait()

	return EventHandle{id: program.id}, nil
}

func (b *CPUBackend) ReadBuffer(handle BufferHandle) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffers[handle.id].data, nil
}

func (b *CPUBackend) Synchronize(ctx context.Context, ev EventHandle) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
