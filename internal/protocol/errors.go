package protocol

import "errors"

var (
	ErrInvalidMagic       = errors.New("protocol: invalid magic")
	ErrUnsupportedVersion = errors.New("protocol: unsupported version")
	ErrUnknownProfile     = errors.New("protocol: unknown profile")
	ErrUnknownSubword     = errors.New("protocol: unknown subword mode")
	ErrUnknownCoset       = errors.New("protocol: unknown coset")
	ErrUEPSelector        = errors.New("protocol: uep selector out of range")
	ErrUEPSpan            = errors.New("protocol: uep layout spans more than three adjacent selectors")
	ErrTileRange          = errors.New("protocol: tile dimension out of range")
	ErrTileRequired       = errors.New("protocol: profile requires a tile")
	ErrSeedRange          = errors.New("protocol: scrambler seed out of range")
	ErrBeaconRange        = errors.New("protocol: beacon config out of range")
	ErrFieldRange         = errors.New("protocol: header field out of range")
	ErrInvalidSymbol      = errors.New("protocol: symbol out of range")
	ErrTruncated          = errors.New("protocol: truncated data")
	ErrReservedTrit       = errors.New("protocol: reserved trit is set")
)
