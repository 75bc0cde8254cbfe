package mqttpub

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Topic name errors. EncodePublish does not validate topics; callers that
// take topics from users check them with ValidateTopicName first.
var (
	ErrInvalidTopicName = errors.New("invalid topic name")
	ErrEmptyTopic       = errors.New("topic cannot be empty")
)

// ValidateTopicName checks that topic can be published to: non-empty, valid
// UTF-8 without NUL, no wildcards and at most 65535 bytes.
// MQTT 3.1.1: Section 4.7.3
func ValidateTopicName(topic string) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	if err := checkStringLength(topic); err != nil {
		return err
	}
	if !utf8.ValidString(topic) {
		return ErrInvalidTopicName
	}
	if strings.ContainsAny(topic, "+#\x00") {
		return ErrInvalidTopicName
	}
	return nil
}
