package layers

import "fmt"

// Per-type counters for generated layer names. Names must be unique within
// a model: the weight snapshot taken during sharing is keyed by them.
var nameCounters = map[string]int{}

func nextName(kind string) string {
	nameCounters[kind]++
	return fmt.Sprintf("%s_%d", kind, nameCounters[kind])
}
