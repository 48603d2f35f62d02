// Package framing holds the symbol-stream stages that sit between the raw
// payload and the transport words: UEP banding with per-band RS coding, the
// boustrophedon tile interleave, the ternary scrambler, and beacon pilots.
//
// Every stage is a pure function of its input and configuration. Bands and
// RS blocks are independent, so band coding fans out across goroutines and
// joins before returning.
package framing
