// Command dupscore classifies pairs of music-recording records as duplicates.
//
// serve runs the HTTP API; score classifies one pair from the command line;
// records imports and inspects the record store; config manages the TOML
// configuration file.
package main
