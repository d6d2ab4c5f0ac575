package toon

// RootPath is the table name used for primitives that sit outside any header.
const RootPath = ""

// JoinPath appends name to a parent dotted path. Top-level names have no prefix.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
