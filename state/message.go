package state

import "zombie/value"

// MessageKind identifies the control message a runner sends to the
// ritual.
type MessageKind int

const (
	MsgSay MessageKind = iota
	MsgAnimate
	MsgDisturb
	MsgInvoke
)

// Message is sent on the shared bus by a runner executing Say, Animate,
// Disturb, or Invoke. Target is unused for MsgSay's routing (it is
// informational only) but carried for logging.
type Message struct {
	Kind   MessageKind
	Target string
	Value  value.Value
}
