package rc

import "encoding/binary"

// unassigned marks a variable with no value in a partial assignment.
const unassigned int32 = -1

// partial is a context: one slot per model variable holding a domain index
// or unassigned. Partials are never mutated after construction; extend and
// forget return copies.
type partial []int32

func emptyPartial(n int) partial {
	p := make(partial, n)
	for i := range p {
		p[i] = unassigned
	}
	return p
}

func (p partial) extend(v int, val int) partial {
	out := make(partial, len(p))
	copy(out, p)
	out[v] = int32(val)
	return out
}

func (p partial) assigned(v int) bool { return p[v] != unassigned }

// cacheKey identifies a sub-problem: a context plus the active factor set.
//
// Both halves are canonical byte strings, so Go's built-in string equality
// and map hashing are the key's equality and hash contract:
//   - context: uvarint (variable index, value index) pairs in ascending
//     variable index order, assigned variables only
//   - factors: uvarint factor indices in ascending order
//
// Factor sets are kept sorted throughout the recursion, and partials are
// indexed by variable, so two equal sub-problems always encode identically.
type cacheKey struct {
	context string
	factors string
}

func makeKey(ctx partial, factors []int) cacheKey {
	var cbuf []byte
	for v, val := range ctx {
		if val == unassigned {
			continue
		}
		cbuf = binary.AppendUvarint(cbuf, uint64(v))
		cbuf = binary.AppendUvarint(cbuf, uint64(val))
	}
	fbuf := make([]byte, 0, len(factors))
	for _, f := range factors {
		fbuf = binary.AppendUvarint(fbuf, uint64(f))
	}
	return cacheKey{context: string(cbuf), factors: string(fbuf)}
}
