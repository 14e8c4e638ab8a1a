package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// pendingBuffer holds messages published while the link is down.
// A retained message replaces any pending retained message on the same
// topic, since only the latest screen matters. Others queue in order and the
// oldest is dropped when full.
// Not safe for concurrent use. Caller must synchronize.
type pendingBuffer struct {
	msgs     []bufferedMsg
	capacity int
	overflow bool // true if any message was dropped since last drain
}

func newPendingBuffer(capacity int) *pendingBuffer {
	return &pendingBuffer{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
	}
}

func (b *pendingBuffer) push(msg bufferedMsg) {
	if msg.retained {
		for i, old := range b.msgs {
			if old.retained && old.topic == msg.topic {
				b.msgs = append(b.msgs[:i], b.msgs[i+1:]...)
				break
			}
		}
	}
	if len(b.msgs) == b.capacity {
		if !b.overflow {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", b.capacity)
			b.overflow = true
		}
		b.msgs = append(b.msgs[:0], b.msgs[1:]...)
	}
	b.msgs = append(b.msgs, msg)
}

// drainAll returns pending messages oldest first and empties the buffer.
func (b *pendingBuffer) drainAll() []bufferedMsg {
	if len(b.msgs) == 0 {
		return nil
	}
	result := make([]bufferedMsg, len(b.msgs))
	copy(result, b.msgs)
	b.msgs = b.msgs[:0]
	b.overflow = false
	return result
}

func (b *pendingBuffer) len() int {
	return len(b.msgs)
}
