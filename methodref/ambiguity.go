package methodref

import (
	"github.com/heshanpadmasiri/lambdaref/java"
)

// maxReceiverDepth bounds the walk up override chains when looking for a
// member whose unbound reference is not ambiguous
const maxReceiverDepth = 32

// nonAmbiguousReceiver returns the method an unbound Type::name reference
// can safely name. A static sibling taking the receiver as its first
// parameter makes member ambiguous; the overridden methods are tried instead.
func (a *Analyzer) nonAmbiguousReceiver(params []*java.Variable, member *java.Method, depth int) *java.Method {
	if member.Class == nil || depth > maxReceiverDepth {
		return nil
	}
	siblings := a.resolver.SiblingMethods(member.Class, member.Name)
	if len(siblings) == 1 {
		return member
	}
	if len(params) == 0 {
		return member
	}
	receiver := params[0].Type
	for _, sibling := range siblings {
		if !a.isPairedNoReceiver(params, receiver, sibling) {
			continue
		}
		for _, overridden := range a.resolver.OverriddenMethods(member) {
			if found := a.nonAmbiguousReceiver(params, overridden, depth+1); found != nil {
				return found
			}
		}
		return nil
	}
	return member
}

// isPairedNoReceiver reports whether method is a static overload that takes
// the receiver explicitly, as in static bar(Foo) next to Foo.bar()
func (a *Analyzer) isPairedNoReceiver(params []*java.Variable, receiver java.Type, method *java.Method) bool {
	return method.ParamCount() == len(params) &&
		method.IsStatic() &&
		a.resolver.TypesConvertible(method.Params[0].Type, receiver)
}
