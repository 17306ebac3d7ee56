package evaluator

// siteCaches collects type feedback per field and method name: which
// receiver types each site actually saw. The REPL's :stats command and
// future specialization read from it; evaluation never depends on it.
type siteCaches struct {
	fields  map[string]map[ObjectType]int
	methods map[string]map[ObjectType]int
}

func newSiteCaches() *siteCaches {
	return &siteCaches{
		fields:  make(map[string]map[ObjectType]int),
		methods: make(map[string]map[ObjectType]int),
	}
}

func (c *siteCaches) recordField(name string, t ObjectType) {
	if c.fields[name] == nil {
		c.fields[name] = make(map[ObjectType]int)
	}
	c.fields[name][t]++
}

func (c *siteCaches) recordMethod(name string, t ObjectType) {
	if c.methods[name] == nil {
		c.methods[name] = make(map[ObjectType]int)
	}
	c.methods[name][t]++
}

// FieldFeedback returns the receiver types observed for a field name.
func (in *Interp) FieldFeedback(name string) map[ObjectType]int {
	return in.caches.fields[name]
}

// MethodFeedback returns the receiver types observed for a method name.
func (in *Interp) MethodFeedback(name string) map[ObjectType]int {
	return in.caches.methods[name]
}
