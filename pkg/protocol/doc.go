// Package protocol implements the binary wire format used to mirror a
// node tree on a remote client.
//
// The server records every tree mutation as a Patch, batches the patches
// of one flush into a PatchesFrame, and sends it over a WebSocket. The
// client applies the patches in order to its own copy of the tree.
//
// # Wire Format
//
// All messages are framed with a 6-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): Connection setup, both directions
//   - FramePatches (0x02): Server → Client patches
//   - FrameControl (0x03): Ping, pong and resync requests
//   - FrameAck (0x04): Client → Server acknowledgment
//   - FrameError (0x05): Error message
//
// # Encoding
//
// Integers are protobuf-style varints. Strings are prefixed with their
// varint length. Node ids are varints; id 0 means "no node".
//
// # Patches
//
// Each patch is an opcode followed by its operands:
//
//	CreateElement  [id][namespace][tag]
//	CreateText     [id][text]
//	AppendChild    [parent][child]
//	InsertBefore   [parent][child][next or 0]
//	ReplaceChild   [parent][new][old]
//	RemoveChild    [parent][child]
//	ClearChildren  [parent]
//	SetAttr        [id][name][value]
//	RemoveAttr     [id][name]
//	SetText        [id][text]
//
// A PatchesFrame carries a sequence number and a count before its patches.
//
// # Limits
//
// Decoders reject length prefixes and counts that exceed the limits in
// limits.go before allocating.
package protocol
