// Package obfusbat is the library entry point for batch script
// obfuscation and deobfuscation.
package obfusbat

import (
	"github.com/benzoXdev/obfusbat/internal/engine"
)

type Config = engine.Options

// Encode obfuscates source. Lines that use variables or labels abort the
// call unless cfg.AssumeYes is set.
func Encode(source string, cfg Config) (string, error) {
	return engine.EncodeString(source, cfg)
}

// Decode recovers the source of a document produced by Encode.
func Decode(obfuscated string) (string, error) {
	return engine.DecodeString(obfuscated)
}
