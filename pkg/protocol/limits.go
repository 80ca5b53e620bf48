package protocol

// Decoding limits. They bound allocations driven by length prefixes in
// untrusted input.
const (
	// MaxPayloadSize is the largest frame payload (4MB).
	MaxPayloadSize = 4 * 1024 * 1024

	// MaxStringLen is the longest string operand (1MB).
	MaxStringLen = 1024 * 1024

	// MaxPatchesPerFrame is the largest patch count in one PatchesFrame.
	MaxPatchesPerFrame = 100_000
)
