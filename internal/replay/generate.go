package replay

import (
	"fmt"
	"math/rand"

	"github.com/vango-dev/silk/pkg/signalvec"
)

// Step is one delta applied to one region. Values are item ids, unique
// across a stream.
type Step struct {
	Region int
	Diff   signalvec.VecDiff[int]
}

func (s Step) String() string {
	return fmt.Sprintf("region %d: %s", s.Region, s.Diff)
}

// Stream is a generated replay: the contents each region starts with and
// the steps applied to them afterwards. Ids are unique across Initial and
// Steps.
type Stream struct {
	Initial [][]int
	Steps   []Step
}

// Regions returns the number of regions.
func (s Stream) Regions() int {
	return len(s.Initial)
}

// Generate returns a stream of n valid steps over the given number of
// regions. About half of the regions start non-empty. No list grows past
// maxLen.
func Generate(rng *rand.Rand, regions, n, maxLen int) Stream {
	maxLen = max(maxLen, 1)
	next := 0
	id := func() int {
		next++
		return next
	}

	initial := make([][]int, regions)
	lens := make([]int, regions)
	for r := range initial {
		if rng.Intn(2) == 0 {
			continue
		}
		initial[r] = make([]int, 1+rng.Intn(maxLen))
		for i := range initial[r] {
			initial[r][i] = id()
		}
		lens[r] = len(initial[r])
	}

	steps := make([]Step, 0, n)
	for len(steps) < n {
		r := rng.Intn(regions)
		l := lens[r]

		var d signalvec.VecDiff[int]
		switch k := signalvec.Kind(rng.Intn(8)); {
		case k == signalvec.KindReplace || (l == 0 && k != signalvec.KindClear && rng.Intn(2) == 0):
			values := make([]int, rng.Intn(maxLen+1))
			for i := range values {
				values[i] = id()
			}
			d = signalvec.Replace(values)
		case k == signalvec.KindClear:
			d = signalvec.Clear[int]()
		case l >= maxLen:
			d = signalvec.RemoveAt[int](rng.Intn(l))
		case l == 0 || k == signalvec.KindPush:
			d = signalvec.Push(id())
		case k == signalvec.KindInsertAt:
			d = signalvec.InsertAt(rng.Intn(l+1), id())
		case k == signalvec.KindUpdateAt:
			d = signalvec.UpdateAt(rng.Intn(l), id())
		case k == signalvec.KindRemoveAt:
			d = signalvec.RemoveAt[int](rng.Intn(l))
		case k == signalvec.KindMove:
			d = signalvec.Move[int](rng.Intn(l), rng.Intn(l))
		default:
			d = signalvec.Pop[int]()
		}

		switch d.Kind {
		case signalvec.KindReplace:
			lens[r] = len(d.Values)
		case signalvec.KindClear:
			lens[r] = 0
		case signalvec.KindInsertAt, signalvec.KindPush:
			lens[r]++
		case signalvec.KindRemoveAt, signalvec.KindPop:
			lens[r]--
		}
		steps = append(steps, Step{Region: r, Diff: d})
	}
	return Stream{Initial: initial, Steps: steps}
}
