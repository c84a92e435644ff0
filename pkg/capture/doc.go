// Package capture stores received NWK frames for later inspection.
//
// Records are keyed by KSUIDs minted from their receive time, so keys sort
// chronologically. MemoryStorage keeps records in process; PebbleStorage
// persists them in a Pebble database.
package capture
