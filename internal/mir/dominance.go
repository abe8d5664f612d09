package mir

// successorsOf lists the blocks a terminator can transfer control to, in no
// particular order.
func successorsOf(t Terminator) []BasicBlockId {
	switch v := t.(type) {
	case GotoTerminator:
		return []BasicBlockId{v.Target}
	case SwitchIntTerminator:
		ids := make([]BasicBlockId, 0, len(v.Cases)+1)
		for _, c := range v.Cases {
			ids = append(ids, c.Target)
		}
		return append(ids, v.Default)
	case ReturnTerminator, UnreachableTerminator:
		return nil
	default:
		return nil
	}
}

// computeDominators computes the immediate-dominator of every block
// reachable from fn.Entry using the standard iterative algorithm (Cooper,
// Harvey, Kennedy): a reverse-postorder pass, repeatedly intersecting each
// block's processed predecessors' dominator chains until the assignment
// stops changing. doms[fn.Entry] == fn.Entry.
func computeDominators(fn *MirFunction) map[BasicBlockId]BasicBlockId {
	succs := map[BasicBlockId][]BasicBlockId{}
	for _, bb := range fn.Blocks {
		if bb.Terminator == nil {
			continue
		}
		succs[bb.ID] = successorsOf(bb.Terminator)
	}

	rpo := reversePostorder(fn.Entry, succs)
	rpoIndex := map[BasicBlockId]int{}
	for i, id := range rpo {
		rpoIndex[id] = i
	}

	preds := map[BasicBlockId][]BasicBlockId{}
	for from, tos := range succs {
		for _, to := range tos {
			preds[to] = append(preds[to], from)
		}
	}

	doms := map[BasicBlockId]BasicBlockId{fn.Entry: fn.Entry}

	intersect := func(a, b BasicBlockId) BasicBlockId {
		for a != b {
			for rpoIndex[a] > rpoIndex[b] {
				a = doms[a]
			}
			for rpoIndex[b] > rpoIndex[a] {
				b = doms[b]
			}
		}
		return a
	}

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == fn.Entry {
				continue
			}
			var newIdom BasicBlockId
			found := false
			for _, p := range preds[b] {
				if _, ok := doms[p]; !ok {
					continue
				}
				if !found {
					newIdom = p
					found = true
					continue
				}
				newIdom = intersect(newIdom, p)
			}
			if !found {
				// unreachable from entry: leave undominated, the validator
				// treats an undefined dominator as "never reached".
				continue
			}
			if cur, ok := doms[b]; !ok || cur != newIdom {
				doms[b] = newIdom
				changed = true
			}
		}
	}

	return doms
}

// reversePostorder lists every block reachable from entry in reverse
// postorder, the traversal order the dominator algorithm above requires.
func reversePostorder(entry BasicBlockId, succs map[BasicBlockId][]BasicBlockId) []BasicBlockId {
	visited := map[BasicBlockId]bool{}
	var post []BasicBlockId

	var visit func(BasicBlockId)
	visit = func(b BasicBlockId) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range succs[b] {
			visit(s)
		}
		post = append(post, b)
	}
	visit(entry)

	rpo := make([]BasicBlockId, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}
