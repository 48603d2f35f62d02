// Package protocol owns the ternary transport contract shared by the codec layers.
//
// Ownership boundary:
// - trit and Word27 primitives
// - profile, subword, coset and UEP enumerations
// - superframe header fields and their layout limits
//
// Subpackages hold the algebra (gf27, rs, crc3) and the framing stages
// (header, framing, raw, session).
package protocol
