package form

// 🔌 Resolver is the host's form database
type Resolver interface {
	// LookupEditorID finds a form by its editor id
	LookupEditorID(editorID string) (ID, bool)
	// LookupLocal finds a form by the id local to the plugin file that defines it
	LookupLocal(plugin string, local uint32) (ID, bool)
	// Exists reports whether a full form id names a loaded form
	Exists(id ID) bool
}

// Resolve turns a parsed reference into a loaded form id.
func Resolve(r Resolver, ref Ref) (ID, bool) {
	if r == nil {
		return 0, false
	}
	switch ref.Kind {
	case RefEditorID:
		return r.LookupEditorID(ref.EditorID)
	case RefLocal:
		return r.LookupLocal(ref.Plugin, ref.Value)
	case RefHex:
		id := ID(ref.Value)
		if !r.Exists(id) {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// ParseAndResolve is ParseRef followed by Resolve. The error is nil when the
// literal parsed but did not resolve; ok tells the two apart.
func ParseAndResolve(r Resolver, literal string) (id ID, ok bool, err error) {
	ref, err := ParseRef(literal)
	if err != nil {
		return 0, false, err
	}
	id, ok = Resolve(r, ref)
	return id, ok, nil
}
