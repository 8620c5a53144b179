package host

import (
	"sort"

	"github.com/dfinlay/gcodelib/ir"
	"github.com/dfinlay/gcodelib/runtime"
)

// blockScratch adapts a plain letter->value map to the Scratch interface,
// exposing a deterministic, sorted letter order.
type blockScratch map[byte]runtime.Value

func (b blockScratch) Get(letter byte) (runtime.Value, bool) { v, ok := b[letter]; return v, ok }

func (b blockScratch) Letters() []byte {
	letters := make([]byte, 0, len(b))
	for l := range b {
		letters = append(letters, l)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return letters
}

// Event is one recorded syscall, in the shape the golden tests serialise.
type Event struct {
	Kind  string           `json:"kind" yaml:"kind"`
	Value string           `json:"value" yaml:"value"`
	Words map[string]string `json:"words" yaml:"words"`
}

// Recorder is an identity host (spec.md §8's "executing the IR with an
// identity host ... yields a syscall trace"): it performs no mechanical
// effect, just appends every syscall it receives to Trace.
type Recorder struct {
	Trace []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Syscall(kind ir.SyscallKind, value runtime.Value, scratch Scratch) error {
	words := map[string]string{}
	for _, l := range scratch.Letters() {
		v, _ := scratch.Get(l)
		words[string(l)] = v.Format()
	}
	r.Trace = append(r.Trace, Event{Kind: kind.String(), Value: value.Format(), Words: words})
	return nil
}
