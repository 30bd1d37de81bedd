package core

// Target selects which connections receive a fanned-out event.
type Target int

const (
	// AllOtherMembers is every member of the room except the sender.
	AllOtherMembers Target = iota
	// AllMembers is every member of the room, sender included.
	AllMembers
	// SenderOnly is the sender alone.
	SenderOnly
)

// fanout delivers ev to the connections selected by target and returns how
// many deliveries were dropped. A failed delivery never stops the others.
// The caller holds r.mu so fan-out order matches mutation order.
func (r *Room) fanout(sender *Client, target Target, ev *Event) (dropped int) {
	if target == SenderOnly {
		if !sender.Deliver(ev) {
			dropped++
		}
		return dropped
	}
	for id, c := range r.members {
		if target == AllOtherMembers && id == sender.ID {
			continue
		}
		if !c.Deliver(ev) {
			dropped++
		}
	}
	return dropped
}
