package java

// Assignable reports whether a value of type from can be passed where to is
// expected. Unknown types and type variables are compatible with everything.
func (cb *Codebase) Assignable(from, to Type) bool {
	if !from.Known() || !to.Known() {
		return true
	}
	if from.IsPrimitive() && to.IsPrimitive() {
		return from.Name == to.Name || widens(from.Name, to.Name)
	}
	if from.IsPrimitive() {
		return cb.Assignable(TypeOfName(boxes[from.Name]), to)
	}
	if to.IsPrimitive() {
		unboxed := unbox(from)
		return unboxed != "" && (unboxed == to.Name || widens(unboxed, to.Name))
	}
	if to.Name == objectClass && to.Dims == 0 {
		return true
	}
	if from.Dims != to.Dims {
		if from.Dims > to.Dims && to.Dims == 0 {
			return to.Name == "java.lang.Cloneable" || to.Name == "java.io.Serializable"
		}
		if from.Dims > to.Dims {
			return to.Name == objectClass
		}
		return false
	}
	if from.Dims > 0 && (from.IsPrimitive() || primitiveNames[from.Name] || primitiveNames[to.Name]) {
		return from.Name == to.Name
	}
	fromClass := cb.ClassOf(from.DeepElement())
	toClass := cb.ClassOf(to.DeepElement())
	if fromClass == nil || toClass == nil {
		return from.Name == to.Name || fromClass == nil || toClass == nil
	}
	return cb.IsSubtypeOrSelf(fromClass, toClass)
}

// ArgumentsContained reports whether the type arguments of from fit those of
// to once from is viewed as to's class. A wildcard argument in from only fits
// a wildcard in to, so List<? extends Number> does not fit List<Number>.
// Raw types and type variables on the to side fit anything.
func (cb *Codebase) ArgumentsContained(from, to Type) bool {
	if len(to.Args) == 0 || len(from.Args) == 0 {
		return true
	}
	if toClass := cb.ClassOf(to.Erasure()); toClass != nil {
		if view, ok := cb.AsSuper(from, toClass); ok {
			from = view
		}
	}
	if from.Name != to.Name || len(from.Args) != len(to.Args) {
		return true
	}
	for i := range to.Args {
		if to.Args[i].Var {
			continue
		}
		if from.Args[i].Wildcard && !to.Args[i].Wildcard {
			return false
		}
		if !cb.ArgumentsContained(from.Args[i], to.Args[i]) {
			return false
		}
	}
	return true
}

// TypesConvertible reports whether a cast between a and b could succeed
func (cb *Codebase) TypesConvertible(a, b Type) bool {
	if !a.Known() || !b.Known() {
		return true
	}
	if a.IsPrimitive() && b.IsPrimitive() {
		if a.Name == "boolean" || b.Name == "boolean" {
			return a.Name == b.Name
		}
		return true
	}
	if a.IsPrimitive() || b.IsPrimitive() {
		return cb.Assignable(a, b) || cb.Assignable(b, a)
	}
	if cb.Assignable(a, b) || cb.Assignable(b, a) {
		return true
	}
	if a.Dims != b.Dims {
		return false
	}
	ac := cb.ClassOf(a.DeepElement())
	bc := cb.ClassOf(b.DeepElement())
	if ac == nil || bc == nil {
		return true
	}
	// a cast to or from an interface compiles unless the class side is final
	if ac.IsInterface() && (bc.IsInterface() || bc.Mods&FINAL == 0) {
		return true
	}
	return bc.IsInterface() && ac.Mods&FINAL == 0
}

func widens(from, to string) bool {
	if from == "boolean" || to == "boolean" {
		return false
	}
	if to == "char" {
		return false
	}
	if from == "char" {
		return numericRank[to] >= numericRank["int"]
	}
	return numericRank[from] < numericRank[to]
}

func unbox(t Type) string {
	if t.Dims > 0 {
		return ""
	}
	for prim, boxed := range boxes {
		if boxed == t.Name {
			return prim
		}
	}
	return ""
}
