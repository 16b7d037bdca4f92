// Package duelist is the intrusive, singly-linked, due-time-ordered list the
// virtual timer multiplexer keeps its armed timers in. It is a direct port
// of crt_Timers.h's private insertTimerAtWakeUpTimeInList / collectDueTimers
// / removeFromList member functions, split out because the multiplexer
// otherwise interleaves list bookkeeping with hardware-arming policy.
package duelist

// Node is one link of the list. Callers implement Node on their own record
// type, typically backed by a single unexported next field plus a due-time
// field, so the list can reorder nodes without knowing anything else about
// them — the same role HwTimer::pNext plays in the original.
type Node interface {
	DueUs() uint64
	Next() Node
	SetNext(Node)
}

// List is a singly-linked list of Node, ordered ascending by DueUs.
type List struct {
	head Node
}

// Head returns the earliest-due node, or nil if the list is empty.
func (l *List) Head() Node {
	return l.head
}

// Empty reports whether the list has no nodes.
func (l *List) Empty() bool {
	return l.head == nil
}

// Insert places n in due-time order. Nodes with an equal DueUs are kept
// after existing nodes with the same due time (strict < comparison), giving
// FIFO ordering among ties. It reports whether n became the new head.
func (l *List) Insert(n Node) (headChanged bool) {
	if l.head == nil {
		l.head = n
		n.SetNext(nil)
		return true
	}
	if n.DueUs() < l.head.DueUs() {
		n.SetNext(l.head)
		l.head = n
		return true
	}
	prev := l.head
	curr := l.head.Next()
	for curr != nil && !(n.DueUs() < curr.DueUs()) {
		prev = curr
		curr = curr.Next()
	}
	prev.SetNext(n)
	n.SetNext(curr)
	return false
}

// Remove unlinks n from the list, identified by equality. It is a no-op if
// n is not present.
func (l *List) Remove(n Node) {
	var prev Node
	curr := l.head
	for curr != nil {
		if curr == n {
			if prev != nil {
				prev.SetNext(curr.Next())
			} else {
				l.head = curr.Next()
			}
			curr.SetNext(nil)
			return
		}
		prev = curr
		curr = curr.Next()
	}
}

// CollectDue pops every node with DueUs <= nowUs off the front of the list,
// in ascending-due order, and returns them as a separate singly-linked chain
// via head/tail, reusing the same Next links. The caller must not reinsert
// a node from the returned chain into a List without first clearing its
// stale next pointer via a fresh Insert.
func (l *List) CollectDue(nowUs uint64) (head, tail Node) {
	for l.head != nil && l.head.DueUs() <= nowUs {
		fired := l.head
		l.head = l.head.Next()
		fired.SetNext(nil)
		if tail != nil {
			tail.SetNext(fired)
		} else {
			head = fired
		}
		tail = fired
	}
	return head, tail
}
