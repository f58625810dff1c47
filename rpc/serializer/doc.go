// Package serializer converts requests and responses to and from their text
// form. The store speaks newline delimited JSON, so the package currently
// ships a single implementation (NewJSONSerializer). The IRPCSerializer
// interface keeps the transport and the client independent of the encoding.
package serializer
