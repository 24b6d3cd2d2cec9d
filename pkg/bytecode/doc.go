// Package bytecode defines the instruction encoding for the stackvm virtual
// machine, a fluent builder for assembling programs, and a disassembler.
//
// A program is a flat byte slice. Every instruction starts with a one-byte
// opcode tag; some tags are followed by an operand:
//
//   - Literal: 8-byte little-endian signed integer (PUSH)
//   - Address: 8-byte little-endian unsigned absolute byte offset
//     (JUMP, JUMP_IF_FALSE, CALL)
//   - Identifier: 1-byte length then that many UTF-8 bytes
//     (STORE_VAR, LOAD_VAR, STORE_LOCAL, LOAD_LOCAL, PRINT)
//
// Addresses are byte offsets into the program, not instruction indices, so
// a jump target must point at the first byte of an instruction.
//
// # Disassembly
//
// Disassemble walks a program with its own cursor and never touches VM
// state. Output looks like:
//
//	Bytecode Disassembly:
//	ADDR INSTRUCTION
//	---- -----------
//	0000 PUSH 42
//	0009 STORE_VAR "x"
//	0012 HALT
//
// The listing is a debugging aid and is not meant to be parsed back.
package bytecode
