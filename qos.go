package mqttpub

import "strconv"

// QoS is the Quality of Service level requested for a published message.
// Levels are ordered: any level above AtMostOnce carries a packet identifier.
type QoS byte

// QoS levels.
const (
	// AtMostOnce delivers a message zero or one times (QoS 0).
	AtMostOnce QoS = 0
	// AtLeastOnce delivers a message one or more times (QoS 1).
	AtLeastOnce QoS = 1
	// ExactlyOnce delivers a message exactly once (QoS 2).
	ExactlyOnce QoS = 2
)

// String returns the string representation of the QoS level.
func (q QoS) String() string {
	switch q {
	case AtMostOnce:
		return "AtMostOnce"
	case AtLeastOnce:
		return "AtLeastOnce"
	case ExactlyOnce:
		return "ExactlyOnce"
	default:
		return "QoS(" + strconv.Itoa(int(q)) + ")"
	}
}

// Valid returns true for QoS 0, 1 and 2.
func (q QoS) Valid() bool {
	return q <= ExactlyOnce
}

// hasPacketID reports whether a PUBLISH at this level carries a packet identifier.
func (q QoS) hasPacketID() bool {
	return q > AtMostOnce
}
