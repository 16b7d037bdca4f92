// Package indexpool manages a fixed-size range of integer tokens [0, N) as a
// set of claimed/free indices, with O(1) allocate/claim/release via a
// swap-based free list. It backs the multiplexer's timer-slot allocator the
// way crt_IndexPool.h backs the equivalent allocator in the original.
package indexpool

// Undefined is returned where the original returns -1.
const Undefined = -1

// Pool manages indices in [0, capacity).
type Pool struct {
	freeList       []int32 // [0, used) in-use tokens; [used, cap) free tokens
	tokenToFreeIdx []int32 // token -> its position in freeList
	used           int32
}

// New returns a Pool managing capacity indices, all initially free.
func New(capacity int) *Pool {
	p := &Pool{
		freeList:       make([]int32, capacity),
		tokenToFreeIdx: make([]int32, capacity),
	}
	p.Reset()
	return p
}

// Reset releases every index back to the free set.
func (p *Pool) Reset() {
	for i := range p.freeList {
		p.freeList[i] = int32(i)
		p.tokenToFreeIdx[i] = int32(i)
	}
	p.used = 0
}

// GetNew claims and returns an available index, or Undefined if the pool is
// full. The index returned is the most recently released one; on a pool with
// nothing released yet, indices come out in ascending order.
func (p *Pool) GetNew() int32 {
	if int(p.used) >= len(p.freeList) {
		return Undefined
	}
	token := p.freeList[p.used]
	p.used++
	return token
}

// IsUsed reports whether index is currently claimed.
func (p *Pool) IsUsed(index int32) bool {
	return index >= 0 && int(index) < len(p.freeList) && p.tokenToFreeIdx[index] < p.used
}

// Claim attempts to claim a specific index (rather than letting GetNew pick
// one). It reports false if index is already in use.
func (p *Pool) Claim(index int32) bool {
	prevFreeIdx := p.tokenToFreeIdx[index]
	if prevFreeIdx < p.used {
		return false
	}
	otherFreeIdx := p.used
	otherToken := p.freeList[otherFreeIdx]

	p.freeList[prevFreeIdx] = otherToken
	p.freeList[otherFreeIdx] = index

	p.tokenToFreeIdx[otherToken] = prevFreeIdx
	p.tokenToFreeIdx[index] = otherFreeIdx

	p.used++
	return true
}

// Release returns index to the free set. index must currently be in use.
func (p *Pool) Release(index int32) {
	p.used--
	firstFreeCandidate := p.freeList[p.used]
	origFreeIdx := p.tokenToFreeIdx[index]

	p.freeList[origFreeIdx] = firstFreeCandidate
	p.freeList[p.used] = index

	p.tokenToFreeIdx[firstFreeCandidate] = origFreeIdx
	p.tokenToFreeIdx[index] = p.used
}

// IsEmpty reports whether no index is currently in use.
func (p *Pool) IsEmpty() bool {
	return p.used == 0
}

// IsFull reports whether every index is currently in use.
func (p *Pool) IsFull() bool {
	return int(p.used) == len(p.freeList)
}

// NumInUse returns the number of currently-claimed indices.
func (p *Pool) NumInUse() int32 {
	return p.used
}

// Capacity returns the total number of indices managed.
func (p *Pool) Capacity() int {
	return len(p.freeList)
}

// GetFirst begins an iteration over in-use indices, returning the first
// token and an iterator cursor to pass to GetNext. Release may be called
// safely on tokens already visited without invalidating the iterator.
func (p *Pool) GetFirst() (token int32, iter int32) {
	if p.used <= 0 {
		return Undefined, Undefined
	}
	iter = p.used - 1
	token = p.freeList[iter]
	if iter == 0 {
		iter = Undefined
	} else {
		iter--
	}
	return token, iter
}

// GetNext continues an iteration started by GetFirst.
func (p *Pool) GetNext(iter int32) (token int32, nextIter int32) {
	if iter == Undefined {
		return Undefined, Undefined
	}
	if iter < p.used {
		token = p.freeList[iter]
		if iter == 0 {
			nextIter = Undefined
		} else {
			nextIter = iter - 1
		}
		return token, nextIter
	}
	if p.used <= 0 {
		return Undefined, Undefined
	}
	iter = p.used - 1
	token = p.freeList[iter]
	if iter == 0 {
		nextIter = Undefined
	} else {
		nextIter = iter - 1
	}
	return token, nextIter
}
