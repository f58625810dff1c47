package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ValentinKolb/qpkv/lib/key"
)

// --------------------------------------------------------------------------
// Message Interfaces
// --------------------------------------------------------------------------

// Request is one of GetItemRequest, PutItemRequest or ScanItemRequest.
// Requests are serialized as a single JSON object with the variant name in
// the "type" field and the variant's fields next to it.
type Request interface {
	json.Marshaler
	// MsgType returns the variant of the request
	MsgType() MessageType
}

// Response is one of GetItemResponse, PutItemResponse, ScanItemResponse or ErrorResponse.
// Responses use the same "type" tag as requests.
type Response interface {
	json.Marshaler
	// MsgType returns the variant of the response
	MsgType() MessageType
}

// envelope is used to peek at the "type" tag before decoding a variant
type envelope struct {
	Type *MessageType `json:"type"`
}

func peekType(data []byte) (MessageType, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return MsgTUnknown, err
	}
	if env.Type == nil {
		return MsgTUnknown, fmt.Errorf("missing \"type\" field")
	}
	return *env.Type, nil
}

// checkType is used by the variant decoders to make sure the tag matches the variant
func checkType(got *MessageType, want MessageType) error {
	if got == nil {
		return fmt.Errorf("missing \"type\" field")
	}
	if *got != want {
		return fmt.Errorf("unexpected message type %s, expected %s", *got, want)
	}
	return nil
}

// DecodeRequest decodes a request of any variant
func DecodeRequest(data []byte) (Request, error) {
	msgType, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch msgType {
	case MsgTGetItem:
		var req GetItemRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}
		return req, nil
	case MsgTPutItem:
		var req PutItemRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}
		return req, nil
	case MsgTScanItem:
		var req ScanItemRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, fmt.Errorf("message type %s is not a request", msgType)
	}
}

// DecodeResponse decodes a response of any variant
func DecodeResponse(data []byte) (Response, error) {
	msgType, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch msgType {
	case MsgTGetItem:
		var resp GetItemResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	case MsgTPutItem:
		var resp PutItemResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	case MsgTScanItem:
		var resp ScanItemResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	case MsgTError:
		var resp ErrorResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("message type %s is not a response", msgType)
	}
}

// --------------------------------------------------------------------------
// Item
// --------------------------------------------------------------------------

// Item is a single key value pair of a table
type Item struct {
	Key   key.Key
	Value string
}

type itemWire struct {
	Key   *key.Key `json:"key"`
	Value *string  `json:"value"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemWire{Key: &i.Key, Value: &i.Value})
}

func (i *Item) UnmarshalJSON(data []byte) error {
	var w itemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Key == nil {
		return fmt.Errorf("item: missing \"key\" field")
	}
	if w.Value == nil {
		return fmt.Errorf("item: missing \"value\" field")
	}
	i.Key, i.Value = *w.Key, *w.Value
	return nil
}

// --------------------------------------------------------------------------
// Requests
// --------------------------------------------------------------------------

// GetItemRequest reads a single item
type GetItemRequest struct {
	TableID key.Key
	Key     key.Key
}

type getItemRequestWire struct {
	Type    *MessageType `json:"type"`
	TableID *key.Key     `json:"table_id"`
	Key     *key.Key     `json:"key"`
}

// NewGetItemRequest creates a new GetItem request
func NewGetItemRequest(tableID, k key.Key) GetItemRequest {
	return GetItemRequest{TableID: tableID, Key: k}
}

func (r GetItemRequest) MsgType() MessageType { return MsgTGetItem }

func (r GetItemRequest) MarshalJSON() ([]byte, error) {
	t := MsgTGetItem
	return json.Marshal(getItemRequestWire{Type: &t, TableID: &r.TableID, Key: &r.Key})
}

func (r *GetItemRequest) UnmarshalJSON(data []byte) error {
	var w getItemRequestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := checkType(w.Type, MsgTGetItem); err != nil {
		return err
	}
	if w.TableID == nil || w.Key == nil {
		return fmt.Errorf("GetItem request: \"table_id\" and \"key\" are required")
	}
	r.TableID, r.Key = *w.TableID, *w.Key
	return nil
}

// PutItemRequest writes a single item
type PutItemRequest struct {
	TableID key.Key
	Item    Item
}

type putItemRequestWire struct {
	Type    *MessageType `json:"type"`
	TableID *key.Key     `json:"table_id"`
	Item    *Item        `json:"item"`
}

// NewPutItemRequest creates a new PutItem request
func NewPutItemRequest(tableID key.Key, item Item) PutItemRequest {
	return PutItemRequest{TableID: tableID, Item: item}
}

func (r PutItemRequest) MsgType() MessageType { return MsgTPutItem }

func (r PutItemRequest) MarshalJSON() ([]byte, error) {
	t := MsgTPutItem
	return json.Marshal(putItemRequestWire{Type: &t, TableID: &r.TableID, Item: &r.Item})
}

func (r *PutItemRequest) UnmarshalJSON(data []byte) error {
	var w putItemRequestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := checkType(w.Type, MsgTPutItem); err != nil {
		return err
	}
	if w.TableID == nil || w.Item == nil {
		return fmt.Errorf("PutItem request: \"table_id\" and \"item\" are required")
	}
	r.TableID, r.Item = *w.TableID, *w.Item
	return nil
}

// ScanItemRequest reads up to Limit items starting at Start (inclusive).
// A nil Start begins at the first key, or at the last key when Backward is set.
type ScanItemRequest struct {
	TableID  key.Key
	Start    *key.Key
	Backward bool
	Limit    uint
}

type scanItemRequestWire struct {
	Type     *MessageType `json:"type"`
	TableID  *key.Key     `json:"table_id"`
	Start    *key.Key     `json:"start"`
	Backward *bool        `json:"backward"`
	Limit    *uint        `json:"limit"`
}

// NewScanItemRequest creates a new ScanItem request
func NewScanItemRequest(tableID key.Key, start *key.Key, backward bool, limit uint) ScanItemRequest {
	return ScanItemRequest{TableID: tableID, Start: start, Backward: backward, Limit: limit}
}

func (r ScanItemRequest) MsgType() MessageType { return MsgTScanItem }

func (r ScanItemRequest) MarshalJSON() ([]byte, error) {
	t := MsgTScanItem
	return json.Marshal(scanItemRequestWire{
		Type:     &t,
		TableID:  &r.TableID,
		Start:    r.Start,
		Backward: &r.Backward,
		Limit:    &r.Limit,
	})
}

func (r *ScanItemRequest) UnmarshalJSON(data []byte) error {
	var w scanItemRequestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := checkType(w.Type, MsgTScanItem); err != nil {
		return err
	}
	if w.TableID == nil || w.Backward == nil || w.Limit == nil {
		return fmt.Errorf("ScanItem request: \"table_id\", \"backward\" and \"limit\" are required")
	}
	r.TableID, r.Start, r.Backward, r.Limit = *w.TableID, w.Start, *w.Backward, *w.Limit
	return nil
}

// --------------------------------------------------------------------------
// Responses
// --------------------------------------------------------------------------

// GetItemResponse carries the item that was read, Item is nil if the key does not exist
type GetItemResponse struct {
	Item *Item
}

type getItemResponseWire struct {
	Type *MessageType `json:"type"`
	Item *Item        `json:"item"`
}

// NewGetItemResponse creates a new GetItem response
func NewGetItemResponse(item *Item) GetItemResponse {
	return GetItemResponse{Item: item}
}

func (r GetItemResponse) MsgType() MessageType { return MsgTGetItem }

func (r GetItemResponse) MarshalJSON() ([]byte, error) {
	t := MsgTGetItem
	return json.Marshal(getItemResponseWire{Type: &t, Item: r.Item})
}

func (r *GetItemResponse) UnmarshalJSON(data []byte) error {
	var w getItemResponseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := checkType(w.Type, MsgTGetItem); err != nil {
		return err
	}
	r.Item = w.Item
	return nil
}

// PutItemResponse acknowledges a write, it has no payload
type PutItemResponse struct{}

type putItemResponseWire struct {
	Type *MessageType `json:"type"`
}

// NewPutItemResponse creates a new PutItem response
func NewPutItemResponse() PutItemResponse {
	return PutItemResponse{}
}

func (r PutItemResponse) MsgType() MessageType { return MsgTPutItem }

func (r PutItemResponse) MarshalJSON() ([]byte, error) {
	t := MsgTPutItem
	return json.Marshal(putItemResponseWire{Type: &t})
}

func (r *PutItemResponse) UnmarshalJSON(data []byte) error {
	var w putItemResponseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return checkType(w.Type, MsgTPutItem)
}

// ScanItemResponse carries the items of a scan in scan order
type ScanItemResponse struct {
	Items []Item
}

type scanItemResponseWire struct {
	Type  *MessageType `json:"type"`
	Items *[]Item      `json:"items"`
}

// NewScanItemResponse creates a new ScanItem response
func NewScanItemResponse(items []Item) ScanItemResponse {
	return ScanItemResponse{Items: items}
}

func (r ScanItemResponse) MsgType() MessageType { return MsgTScanItem }

func (r ScanItemResponse) MarshalJSON() ([]byte, error) {
	t := MsgTScanItem
	items := r.Items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(scanItemResponseWire{Type: &t, Items: &items})
}

func (r *ScanItemResponse) UnmarshalJSON(data []byte) error {
	var w scanItemResponseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := checkType(w.Type, MsgTScanItem); err != nil {
		return err
	}
	if w.Items == nil || *w.Items == nil {
		return fmt.Errorf("ScanItem response: \"items\" must be a list")
	}
	r.Items = *w.Items
	return nil
}

// ErrorResponse reports a server side error.
// The error payload shares the object with the "type" tag but has its own tag key "error".
type ErrorResponse struct {
	Err Error
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err Error) ErrorResponse {
	return ErrorResponse{Err: err}
}

func (r ErrorResponse) MsgType() MessageType { return MsgTError }

func (r ErrorResponse) MarshalJSON() ([]byte, error) {
	t := MsgTError
	w := r.Err.wire()
	w.Type = &t
	return json.Marshal(w)
}

func (r *ErrorResponse) UnmarshalJSON(data []byte) error {
	var w errorWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := checkType(w.Type, MsgTError); err != nil {
		return err
	}
	e, err := w.toError()
	if err != nil {
		return err
	}
	r.Err = e
	return nil
}

// --------------------------------------------------------------------------
// Server Error
// --------------------------------------------------------------------------

// Error is an error declared by the server.
// The Message is only set for ErrorKindOther.
type Error struct {
	Kind    ErrorKind
	Message string
}

// NewDeadlockError creates a new deadlock error
func NewDeadlockError() *Error {
	return &Error{Kind: ErrorKindDeadlock}
}

// NewOtherError creates a new error with an opaque diagnostic message
func NewOtherError(message string) *Error {
	return &Error{Kind: ErrorKindOther, Message: message}
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case ErrorKindDeadlock:
		return "deadlock"
	default:
		return fmt.Sprintf("other error: %s", e.Message)
	}
}

// errorWire is shared by Error and ErrorResponse, Type is only set for the latter
type errorWire struct {
	Type    *MessageType `json:"type,omitempty"`
	Kind    *ErrorKind   `json:"error"`
	Message *string      `json:"message,omitempty"`
}

func (e Error) wire() errorWire {
	kind := e.Kind
	w := errorWire{Kind: &kind}
	if kind == ErrorKindOther {
		msg := e.Message
		w.Message = &msg
	}
	return w
}

func (w errorWire) toError() (Error, error) {
	if w.Kind == nil {
		return Error{}, fmt.Errorf("error: missing \"error\" field")
	}
	e := Error{Kind: *w.Kind}
	if e.Kind == ErrorKindOther && w.Message != nil {
		e.Message = *w.Message
	}
	return e, nil
}

func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

func (e *Error) UnmarshalJSON(data []byte) error {
	var w errorWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := w.toError()
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// --------------------------------------------------------------------------
// Error Kind Definition
// --------------------------------------------------------------------------

// ErrorKind defines the kind of server error
type ErrorKind uint8

const (
	ErrorKindOther    ErrorKind = iota // Opaque error with a diagnostic message
	ErrorKindDeadlock                  // Transient contention, reads are safe to retry
)

// String returns the wire representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindDeadlock:
		return "deadlock"
	default:
		return "other"
	}
}

// MarshalJSON implements the json.Marshaller interface for ErrorKind.
func (k ErrorKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for ErrorKind.
// The kind is matched case-insensitive, so "Deadlock" is accepted as well.
func (k *ErrorKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch strings.ToLower(s) {
	case "deadlock":
		*k = ErrorKindDeadlock
	case "other":
		*k = ErrorKindOther
	default:
		return fmt.Errorf("unknown error kind: %s", s)
	}
	return nil
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType is the value of the "type" tag of requests and responses.
type MessageType uint8

const (
	MsgTUnknown  MessageType = iota
	MsgTGetItem              // Read a single item
	MsgTPutItem              // Write a single item
	MsgTScanItem             // Read a range of items
	MsgTError                // Server declared error (responses only)
)

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTGetItem:
		return "GetItem"
	case MsgTPutItem:
		return "PutItem"
	case MsgTScanItem:
		return "ScanItem"
	case MsgTError:
		return "Error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
func (t MessageType) MarshalJSON() ([]byte, error) {
	if t == MsgTUnknown {
		return nil, fmt.Errorf("can not serialize unknown message type")
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// Variant names are case-sensitive.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "GetItem":
		*t = MsgTGetItem
	case "PutItem":
		*t = MsgTPutItem
	case "ScanItem":
		*t = MsgTScanItem
	case "Error":
		*t = MsgTError
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}
	return nil
}
