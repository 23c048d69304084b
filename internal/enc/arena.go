package enc

import (
	"github.com/deepteams/intrapred/internal/assert"
	"github.com/deepteams/intrapred/internal/pool"
)

// nodePageSize is the number of nodes per arena page. Pages are never
// moved, so *TB pointers stay valid while the node is live.
const nodePageSize = 512

type nodePage struct {
	nodes [nodePageSize]TB
}

// Arena owns every TB of a picture analysis. Rejected trial nodes are
// released as soon as they lose, and their slots are reused.
type Arena struct {
	pages []*nodePage
	next  int // next never-used slot
	free  []NodeID
	live  int
}

// New returns a zeroed node.
func (a *Arena) New() NodeID {
	a.live++
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		*a.Node(id) = TB{}
		return id
	}
	if a.next == 0 {
		// Slot 0 is the nil handle.
		a.next = 1
	}
	if a.next >= len(a.pages)*nodePageSize {
		a.pages = append(a.pages, &nodePage{})
	}
	id := NodeID(a.next)
	a.next++
	return id
}

// Node returns the node for id.
func (a *Arena) Node(id NodeID) *TB {
	assert.That(id > NoNode && int(id) < a.next, "invalid node handle %d", id)
	return &a.pages[int(id)/nodePageSize].nodes[int(id)%nodePageSize]
}

// Release frees id and its whole subtree, returning leaf buffers to the
// pools.
func (a *Arena) Release(id NodeID) {
	if id == NoNode {
		return
	}
	tb := a.Node(id)
	for _, c := range tb.Children {
		a.Release(c)
	}
	if tb.Levels != nil {
		pool.PutCoeffs(tb.Levels)
	}
	if tb.Recon != nil {
		pool.PutPixels(tb.Recon)
	}
	*tb = TB{}
	a.free = append(a.free, id)
	a.live--
}

// Live returns the number of allocated, unreleased nodes.
func (a *Arena) Live() int {
	return a.live
}

// Reset drops every node. Leaf buffers of still-live nodes are left to the
// garbage collector.
func (a *Arena) Reset() {
	for _, p := range a.pages {
		*p = nodePage{}
	}
	a.next = 1
	a.free = a.free[:0]
	a.live = 0
}
