package ecs

// Entity is an index into the signature array and every component pool.
// Ids are recycled, so a handle kept past RemoveEntity may later name a
// different entity.
type Entity uint32

func (e Entity) Index() int { return int(e) }

// IDAllocator issues entity ids and recycles freed ones in FIFO order.
type IDAllocator struct {
	live     []bool
	freeList []uint32
	head     int // first unread slot of freeList
	count    int
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{
		live:     make([]bool, 0, 1024),
		freeList: make([]uint32, 0, 256),
	}
}

// Allocate returns the id freed longest ago, or a new id when none is queued.
func (a *IDAllocator) Allocate() Entity {
	a.count++
	if a.head < len(a.freeList) {
		idx := a.freeList[a.head]
		a.head++
		if a.head == len(a.freeList) {
			a.freeList = a.freeList[:0]
			a.head = 0
		}
		a.live[idx] = true
		return Entity(idx)
	}
	idx := uint32(len(a.live))
	a.live = append(a.live, true)
	return Entity(idx)
}

// Free queues a live id for reuse. Freeing an id that is not live returns
// false and changes nothing.
func (a *IDAllocator) Free(e Entity) bool {
	if !a.IsLive(e) {
		return false
	}
	a.live[e] = false
	a.count--
	// Compact once the consumed prefix dominates the queue.
	if a.head >= 64 && a.head*2 >= len(a.freeList) {
		n := copy(a.freeList, a.freeList[a.head:])
		a.freeList = a.freeList[:n]
		a.head = 0
	}
	a.freeList = append(a.freeList, uint32(e))
	return true
}

func (a *IDAllocator) IsLive(e Entity) bool {
	return int(e) < len(a.live) && a.live[e]
}

// Len returns the number of live ids.
func (a *IDAllocator) Len() int { return a.count }

// HighWater returns one past the largest id ever issued.
func (a *IDAllocator) HighWater() int { return len(a.live) }
