package bus

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/allocd/allocd/bus/message"
)

const (
	Gob SerialType = iota + 1
	Json
)

// SerialType selects the wire encoding for queued messages
type SerialType int

var messageMap map[string]reflect.Type

func init() {
	messageMap = make(map[string]reflect.Type)
}

func msgKey(msg message.Message) string {
	return reflect.TypeOf(msg).String()
}

type typeReader struct {
	Type string `json:"__type"`
}

// RegisterMessage makes a message type known to the serializer, so it
// can be reconstructed by name from the wire. The bus registers every
// routed message at startup.
func RegisterMessage(msg message.Message) {
	gob.Register(&msg)
	gob.Register(msg)

	messageMap[msgKey(msg)] = reflect.TypeOf(msg)
}

// SerializeMessage encodes a message for transport. Json embeds a
// __type tag so external systems can produce and consume messages;
// Gob is for trusted internal hops.
func SerializeMessage(msg message.Message, t SerialType) ([]byte, error) {
	if t == Gob {
		b := &bytes.Buffer{}
		enc := gob.NewEncoder(b)
		err := enc.Encode(&msg)
		return b.Bytes(), err
	}

	if t == Json {
		if _, ok := messageMap[msgKey(msg)]; !ok {
			return []byte{}, errors.New("bus.SerializeMessage: cannot serialize as JSON, not registered " + msgKey(msg))
		}

		data, err := json.Marshal(msg)
		if err != nil {
			return []byte{}, err
		}

		modified := strings.Replace(
			string(data),
			"{",
			fmt.Sprintf(`{"__type":"%s",`, msgKey(msg)),
			1,
		)
		if modified == `{,}` {
			modified = "{}"
		}
		return []byte(modified), nil
	}

	return []byte{}, errors.New("bus.SerializeMessage: unknown encoding")
}

// DeserializeMessage decodes a message produced by SerializeMessage,
// sniffing the encoding from the payload
func DeserializeMessage(data []byte) (message.Message, error) {
	if json.Valid(data) {
		var reader typeReader
		if err := json.Unmarshal(data, &reader); err != nil {
			return nil, err
		}

		msgType, ok := messageMap[reader.Type]
		if !ok {
			return nil, errors.New("bus.DeserializeMessage: unknown type " + reader.Type)
		}

		msg := reflect.New(msgType).Interface()
		err := json.Unmarshal(data, msg)
		return reflect.ValueOf(msg).Elem().Interface().(message.Message), err
	}

	b := bytes.NewBuffer(data)
	dec := gob.NewDecoder(b)
	var result message.Message
	err := dec.Decode(&result)
	return result, err
}
