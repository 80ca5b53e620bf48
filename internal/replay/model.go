package replay

import "github.com/vango-dev/silk/pkg/signalvec"

// naiveApply returns a new list with d applied, written out element by
// element so it shares nothing with signalvec.Apply.
func naiveApply(list []int, d signalvec.VecDiff[int]) []int {
	out := make([]int, 0, len(list)+1)
	switch d.Kind {
	case signalvec.KindReplace:
		out = append(out, d.Values...)
	case signalvec.KindInsertAt:
		for i, v := range list {
			if i == d.Index {
				out = append(out, d.Value)
			}
			out = append(out, v)
		}
		if d.Index == len(list) {
			out = append(out, d.Value)
		}
	case signalvec.KindUpdateAt:
		for i, v := range list {
			if i == d.Index {
				v = d.Value
			}
			out = append(out, v)
		}
	case signalvec.KindRemoveAt:
		for i, v := range list {
			if i != d.Index {
				out = append(out, v)
			}
		}
	case signalvec.KindMove:
		moved := list[d.Index]
		rest := naiveApply(list, signalvec.RemoveAt[int](d.Index))
		out = naiveApply(rest, signalvec.InsertAt(d.To, moved))
	case signalvec.KindPush:
		out = append(out, list...)
		out = append(out, d.Value)
	case signalvec.KindPop:
		out = append(out, list[:len(list)-1]...)
	case signalvec.KindClear:
	}
	return out
}
