package curve

import "fmt"

// ParityViolation is returned when the CPU reference path and the GPU
// kernel path disagree on a candidate's public key. It is always fatal,
// never a warning: a divergence means one of the two implementations has
// silently drifted and every downstream result is suspect.
type ParityViolation struct {
	Scalar    [32]byte
	Reference PublicKeyPoint
	Kernel    PublicKeyPoint
}

func (e *ParityViolation) Error() string {
	return fmt.Sprintf("curve: parity violation for scalar %x: reference=%x kernel=%x",
		e.Scalar, e.Reference.Compressed(), e.Kernel.Compressed())
}

// VerifiedScalarBaseMult computes k*G on both execution paths and returns
// the shared result only if they agree bit-for-bit. Forensic nonce-reuse
// recovery calls this to validate a recovered key; the scan orchestrator's
// re-verification compares hash160 values instead (scan.HitParityViolation).
func VerifiedScalarBaseMult(k [32]byte) (PublicKeyPoint, error) {
	ref, err := ScalarBaseMultReference(k)
	if err != nil {
		return PublicKeyPoint{}, err
	}
	kernel, err := ScalarBaseMultKernel(k)
	if err != nil {
		return PublicKeyPoint{}, err
	}
	if ref.X != kernel.X || ref.Y != kernel.Y {
		return PublicKeyPoint{}, &ParityViolation{Scalar: k, Reference: ref, Kernel: kernel}
	}
	return ref, nil
}
