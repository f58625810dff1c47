// Package common provides the wire model and the shared infrastructure of the
// client: message types, the error taxonomy, configuration structures and the
// logger factory.
//
// The package focuses on:
//   - Request and Response variants and their JSON codecs
//   - The server error payload (Error, ErrorKind)
//   - Client side error sentinels (ErrConnection, ErrTransport, ErrProtocolViolation)
//   - Configuration structures for the client and the reference peer
//   - Custom logging implementation integrated with Dragonboat's logger package
//
// Key Components:
//
//   - Request / Response: discriminated unions. Each variant is its own struct
//     with an explicit MarshalJSON/UnmarshalJSON pair. On the wire a message is
//     one JSON object whose "type" field names the variant and whose other
//     fields are the variant's fields:
//
//     {"type":"GetItem","table_id":"7573657273202020","key":"0000031500000000"}
//
//   - Error: the payload of the "Error" response. It is flattened into the
//     response object but carries its own tag under the key "error", so a
//     deadlock reads {"type":"Error","error":"deadlock"} and any other failure
//     reads {"type":"Error","error":"other","message":"..."}. The two tag keys
//     are intentionally different and must not be unified.
//
//   - MessageType / ErrorKind: enumerations with JSON string codecs.
//
//   - ClientConfig / ServerConfig: connection parameters and their String()
//     renderings for the CLI.
//
//   - Logger: custom formatting for dragonboat's logger facade, see InitLoggers.
package common
