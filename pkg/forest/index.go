package forest

import "fmt"

// Index is a vertex index that may be absent. The zero value is [Missing].
type Index struct {
	ID    int
	Valid bool
}

// Missing marks a vertex that has no counterpart in the target index space.
var Missing = Index{}

// At returns a present index.
func At(id int) Index { return Index{ID: id, Valid: true} }

// Indices wraps plain ids as present indices.
func Indices(ids ...int) []Index {
	out := make([]Index, len(ids))
	for i, id := range ids {
		out[i] = At(id)
	}
	return out
}

// Get returns the id and whether it is present.
func (i Index) Get() (int, bool) { return i.ID, i.Valid }

// String renders the id, or "missing".
func (i Index) String() string {
	if !i.Valid {
		return "missing"
	}
	return fmt.Sprint(i.ID)
}

// RemapVertexList translates original vertex indices into internal ones.
// Missing entries and indices outside the original vertex range map to
// [Missing].
func (f *Forest) RemapVertexList(list []Index) []Index {
	out := make([]Index, len(list))
	for i, idx := range list {
		id, ok := idx.Get()
		if !ok || id < 0 || id >= len(f.vertexOrder) {
			out[i] = Missing
			continue
		}
		out[i] = At(f.vertexOrder[id])
	}
	return out
}

// AddVertexList registers a named vertex list. When remapFromOriginal is
// true the list is in original numbering and is translated before storing;
// otherwise it is stored as given.
func (f *Forest) AddVertexList(name string, list []Index, remapFromOriginal bool) {
	if remapFromOriginal {
		f.vertexLists[name] = f.RemapVertexList(list)
		return
	}
	f.vertexLists[name] = append([]Index(nil), list...)
}

// VertexList returns a copy of a named list in internal numbering.
func (f *Forest) VertexList(name string) ([]Index, bool) {
	l, ok := f.vertexLists[name]
	if !ok {
		return nil, false
	}
	return append([]Index(nil), l...), true
}

// VertexLists returns a copy of every named list.
func (f *Forest) VertexLists() map[string][]Index {
	out := make(map[string][]Index, len(f.vertexLists))
	for k, v := range f.vertexLists {
		out[k] = append([]Index(nil), v...)
	}
	return out
}
