// Package lnmp implements the LNMP text format: a line-oriented record
// syntax of numbered fields (F12=14532, F20="name", F23=["a","b"]) with
// optional type hints (F12:i=14532), semantic checksums (F12:i=14532#36AAE667),
// nested records and record arrays.
//
// The package provides a lexer and parser with strict and loose modes, a
// canonical encoder, and SC32 semantic checksums. It is the reference
// implementation the conformance harness runs against; the Codec type
// adapts it to the harness capability contract.
package lnmp
