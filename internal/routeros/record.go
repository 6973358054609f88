package routeros

// Pair is one attribute of a reply sentence.
type Pair struct {
	Key   string
	Value string
}

// Record is the decoded attribute list of one !re sentence. Field order
// is preserved: the system-health battery iterates every field in the
// order the device reported them.
type Record struct {
	pairs []Pair
	index map[string]int
}

// NewRecord builds a Record from alternating key, value strings. Later
// occurrences of a key overwrite earlier ones, mirroring how the API
// protocol treats repeated attribute words.
func NewRecord(kv ...string) Record {
	if len(kv)%2 != 0 {
		panic("routeros: NewRecord requires an even number of arguments")
	}
	r := Record{index: make(map[string]int, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		r = r.set(kv[i], kv[i+1])
	}
	return r
}

func (r Record) set(key, value string) Record {
	if i, ok := r.index[key]; ok {
		r.pairs[i].Value = value
		return r
	}
	r.index[key] = len(r.pairs)
	r.pairs = append(r.pairs, Pair{Key: key, Value: value})
	return r
}

// Get returns the value of key and whether it was present.
func (r Record) Get(key string) (string, bool) {
	i, ok := r.index[key]
	if !ok {
		return "", false
	}
	return r.pairs[i].Value, true
}

// Pairs returns every attribute in device-reported order.
func (r Record) Pairs() []Pair {
	return r.pairs
}
