package steptree

import "github.com/krun-tools/stepcraft/pkg/idwrap"

// Drag and drop state. The original editor tracked this with ad hoc mutable
// fields cleared by debounce timers; here it is a small explicit machine
// driven purely by events, so boundary-crossing flicker has no timer races
// to win.

type DragPhase int8

const (
	DragIdle DragPhase = iota
	Dragging
	Hovering
)

// DropPosition says where the dragged node lands relative to the target.
type DropPosition int8

const (
	DropBefore DropPosition = iota
	DropAfter
	DropInside
	DropRootEnd
)

// DropSpec is a fully resolved drop slot.
type DropSpec struct {
	TargetID idwrap.IDWrap
	Position DropPosition
}

// DragState is the ephemeral interaction state. Zero value is idle.
type DragState struct {
	phase  DragPhase
	nodeID idwrap.IDWrap
	hover  DropSpec
}

func (s *DragState) Phase() DragPhase      { return s.phase }
func (s *DragState) NodeID() idwrap.IDWrap { return s.nodeID }
func (s *DragState) Hover() (DropSpec, bool) {
	return s.hover, s.phase == Hovering
}

// Start begins dragging a node. Restarting with another node is allowed and
// simply replaces the previous drag.
func (s *DragState) Start(id idwrap.IDWrap) {
	s.phase = Dragging
	s.nodeID = id
	s.hover = DropSpec{}
}

// HoverNode records the pointer sitting over a tree row. belowMidpoint picks
// the after slot; a container row with the pointer in its body maps to
// DropInside via HoverInside instead.
func (s *DragState) HoverNode(target idwrap.IDWrap, belowMidpoint bool) {
	if s.phase == DragIdle {
		return
	}
	pos := DropBefore
	if belowMidpoint {
		pos = DropAfter
	}
	s.phase = Hovering
	s.hover = DropSpec{TargetID: target, Position: pos}
}

// HoverInside records the pointer over a container's body (or the empty area
// of an expanded container with no children yet).
func (s *DragState) HoverInside(container idwrap.IDWrap) {
	if s.phase == DragIdle {
		return
	}
	s.phase = Hovering
	s.hover = DropSpec{TargetID: container, Position: DropInside}
}

// HoverRootEnd records the pointer over the root-level empty area.
func (s *DragState) HoverRootEnd() {
	if s.phase == DragIdle {
		return
	}
	s.phase = Hovering
	s.hover = DropSpec{Position: DropRootEnd}
}

// Leave is the confirm-leave transition: the pointer left the previously
// hovered element. It drops back to plain dragging but keeps the drag alive;
// the next hover event re-targets without any timer involved.
func (s *DragState) Leave(target idwrap.IDWrap) {
	if s.phase != Hovering || s.hover.TargetID != target {
		return
	}
	s.phase = Dragging
	s.hover = DropSpec{}
}

// Drop finishes the drag. It returns the resolved slot when one was being
// hovered; in every case the state resets to idle, including abnormal
// termination paths that call Drop with no hover.
func (s *DragState) Drop() (id idwrap.IDWrap, spec DropSpec, ok bool) {
	id, spec, ok = s.nodeID, s.hover, s.phase == Hovering
	*s = DragState{}
	return id, spec, ok
}

// Cancel unconditionally resets to idle (drag end, escape, window leave).
func (s *DragState) Cancel() {
	*s = DragState{}
}
