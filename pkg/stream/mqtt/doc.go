// Package mqtt carries Firmata byte streams and traces over an MQTT broker.
//
// Topics under the prefix of the broker URL, for a board with ID:
//
//   ID/host  bytes from host to board
//   ID/board bytes from board to host
//   ID/trace decoded commands (protobuf)
//   ID/meta  retained board metadata (JSON), cleared by will
package mqtt
